// Package store is the public facade: the one boundary the rest of a
// pipeline's tooling calls through, matching ml_metadata's MetadataStore.
// Every method opens (or joins) one transaction via a txn.Executor and
// composes the internal/typesys, internal/entity, internal/graph and
// internal/lineage packages over an internal/mao.MAO — it never touches SQL
// directly.
package store

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/clockutil"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdlog"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/simpletypes"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/sqlmao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// Store is the metadata store facade.
type Store struct {
	mao   mao.MAO
	exec  txn.Executor
	clock clockutil.Clock
	log   *mdlog.Logger
}

// New wires a Store over an already-open MAO and transaction executor.
// Most callers want Open instead; New exists for tests that supply a fake
// MAO or executor.
func New(m mao.MAO, exec txn.Executor, log *mdlog.Logger) *Store {
	if log == nil {
		log = mdlog.NewNop()
	}
	return &Store{mao: m, exec: exec, clock: clockutil.Real{}, log: log}
}

// clockSetter is implemented by MAOs (sqlmao.DB) that stamp their own
// create/update timestamps off a clock seam. SetClock below propagates to
// it so a test driving the store's optimistic-concurrency sleep loop sees
// the same clock the stored timestamps were stamped with.
type clockSetter interface {
	SetClock(clockutil.Clock)
}

// SetClock overrides the clock the optimistic-concurrency path in
// PutArtifacts uses, for tests that need to control timestamp ordering. It
// also overrides the MAO's own timestamp clock when the MAO supports it, so
// both layers advance together.
func (s *Store) SetClock(c clockutil.Clock) {
	s.clock = c
	if cs, ok := s.mao.(clockSetter); ok {
		cs.SetClock(c)
	}
}

// Open opens (creating if absent) a SQLite-backed store at path. It does
// not call InitMetadataStore; callers decide when to apply schema/bootstrap,
// the way the original separates connecting from migrating.
func Open(path string, log *mdlog.Logger) (*Store, error) {
	if log == nil {
		log = mdlog.NewNop()
	}
	db, err := sqlmao.Open(path, log)
	if err != nil {
		return nil, err
	}
	exec := txn.NewSQLiteExecutor(db.Underlying(), log)
	return New(db, exec, log), nil
}

// MigrationOptions gates Create's one supported migration: rolling the
// schema back for a handoff to an older client binary. A non-negative
// DowngradeToSchemaVersion takes Create down the downgrade path instead of
// the normal init path; HasDowngradeToSchemaVersion distinguishes an
// explicit request from a zero-value struct.
type MigrationOptions struct {
	DowngradeToSchemaVersion    int64
	HasDowngradeToSchemaVersion bool
}

// Create opens a store at path and either fully initializes it — schema
// migration plus the built-in simple types, ready to accept writes — or,
// when opts requests a downgrade, performs the downgrade instead and
// returns Cancelled without a usable store: clients are expected to
// reconnect with a library built against the older schema version.
func Create(ctx context.Context, path string, log *mdlog.Logger, opts MigrationOptions) (*Store, error) {
	s, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	if opts.HasDowngradeToSchemaVersion && opts.DowngradeToSchemaVersion >= 0 {
		return nil, s.DowngradeSchema(ctx, opts.DowngradeToSchemaVersion)
	}
	if err := s.InitMetadataStore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// InitMetadataStore (re)applies the schema and seeds the built-in simple
// types. It is safe to call on an existing, already-initialized store.
func (s *Store) InitMetadataStore(ctx context.Context) error {
	if err := s.mao.InitSchema(ctx); err != nil {
		return err
	}
	return s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		return simpletypes.Bootstrap(ctx, s.mao)
	})
}

// InitMetadataStoreIfNotExists is InitMetadataStore with the same
// idempotency guarantee CREATE TABLE IF NOT EXISTS already gives InitSchema
// — kept as a distinct name because spec callers reach for it explicitly
// to express "don't care if this is a fresh or existing database".
func (s *Store) InitMetadataStoreIfNotExists(ctx context.Context) error {
	return s.InitMetadataStore(ctx)
}

// DowngradeSchema rolls the recorded schema_version back to toVersion
// inside one transaction, for a store being handed to an older binary. It
// always returns a non-nil error: Cancelled on success, signaling the
// deliberate handoff, or whatever the underlying downgrade failed with.
func (s *Store) DowngradeSchema(ctx context.Context, toVersion int64) error {
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		return s.mao.DowngradeSchema(ctx, toVersion)
	})
	if err != nil {
		return err
	}
	return mderr.Cancelled(
		"schema downgraded to version %d; reconnect using a client built against that schema version", toVersion)
}
