// Package txn implements the TransactionExecutor contract: running a unit
// of work inside one transaction, with request-scoped options and
// executor-defined retry on transient failures.
package txn

import "context"

// Options is the transaction configuration Execute accepts. Store methods
// take no per-request options and pass the zero value.
type Options struct {
	// HasDeadline is carried but not consulted by SQLiteExecutor: retries
	// are bounded only by MaxRetries.
	HasDeadline bool
	// MaxRetries caps how many times Execute re-invokes unit after a
	// retryable failure (e.g. SQLITE_BUSY). Zero means "use the
	// executor's default".
	MaxRetries int
}

// Unit is the closure an Execute call runs inside a single transaction. It
// captures its request/response by reference and returns a status, per
// spec.md §9's "model the unit as a value" design note.
type Unit func(ctx context.Context) error

// Executor runs a Unit inside one transaction, retrying on transient
// failures at its own discretion; the core itself never retries.
type Executor interface {
	Execute(ctx context.Context, opts Options, unit Unit) error
}
