package txn

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdlog"
)

type txKey struct{}

// FromContext returns the *sql.Tx the currently-running Unit is inside, or
// nil if none is active (callers outside a Unit should not normally reach
// the MAO, but read-only helpers may run against the pool directly).
func FromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

const defaultMaxRetries = 5

// SQLiteExecutor runs each Unit inside one database/sql transaction over a
// single *sql.DB, retrying on SQLITE_BUSY/SQLITE_LOCKED up to its retry
// budget — the one piece of retry behavior the TransactionExecutor contract
// reserves for itself; the core never retries on its own (spec.md §5).
type SQLiteExecutor struct {
	db  *sql.DB
	log *mdlog.Logger
}

func NewSQLiteExecutor(db *sql.DB, log *mdlog.Logger) *SQLiteExecutor {
	if log == nil {
		log = mdlog.NewNop()
	}
	return &SQLiteExecutor{db: db, log: log}
}

func (e *SQLiteExecutor) Execute(ctx context.Context, opts Options, unit Unit) error {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	// tagged per call so a run of retries on one logical request shows up
	// as one correlated group in the logs rather than indistinguishable
	// "retrying transaction" lines.
	txnID := uuid.NewString()
	log := e.log.With("txn_id", txnID)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn("retrying transaction", "attempt", attempt, "cause", lastErr)
			time.Sleep(backoff(attempt))
		}

		err := e.runOnce(ctx, unit)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return lastErr
}

func (e *SQLiteExecutor) runOnce(ctx context.Context, unit Unit) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := unit(withTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * 10 * time.Millisecond
	if d > 200*time.Millisecond {
		d = 200 * time.Millisecond
	}
	return d
}

// isRetryable reports whether err is a SQLite busy/locked condition worth
// retrying the whole transaction for. The driver surfaces these as plain
// errors whose message names the SQLite result code, so we match on text
// rather than a typed sentinel.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrTxDone) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
