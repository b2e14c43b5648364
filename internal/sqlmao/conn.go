// Package sqlmao is the concrete MetadataAccessObject implementation,
// backed by SQLite the way the teacher's storage package backs its
// entities/observations/relations graph: database/sql over
// github.com/ncruces/go-sqlite3, one *sql.DB per store instance.
package sqlmao

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/clockutil"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdlog"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// DB wraps the *sql.DB handle and implements mao.MAO. Every method except
// InitSchema resolves the active transaction off ctx via txn.FromContext —
// it never begins one itself, since that is the TransactionExecutor's job.
// InitSchema always runs directly against the pool.
type DB struct {
	db    *sql.DB
	log   *mdlog.Logger
	clock clockutil.Clock
}

// Open opens (or creates) a SQLite database at path and configures it per
// Pragmas. It does not create the schema; call InitSchema for that.
func Open(path string, log *mdlog.Logger) (*DB, error) {
	if log == nil {
		log = mdlog.NewNop()
	}
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping metadata db: %w", err)
	}
	return &DB{db: db, log: log, clock: clockutil.Real{}}, nil
}

// SetClock overrides the clock used to stamp create/update times, for
// tests that need to control the abort-if-changed timing window.
func (d *DB) SetClock(c clockutil.Clock) { d.clock = c }

// Close closes the underlying database handle.
func (d *DB) Close() error { return d.db.Close() }

// Underlying exposes the *sql.DB so a txn.Executor can be built over it.
func (d *DB) Underlying() *sql.DB { return d.db }

func (d *DB) InitSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return fmt.Errorf("check schema_version: %w", err)
	}
	if count == 0 {
		if _, err := d.db.ExecContext(ctx, `INSERT INTO schema_version(version) VALUES (?)`, currentSchemaVersion); err != nil {
			return fmt.Errorf("seed schema_version: %w", err)
		}
	}
	return nil
}

func (d *DB) DowngradeSchema(ctx context.Context, toVersion int64) error {
	_, err := d.tx(ctx).ExecContext(ctx, `UPDATE schema_version SET version = ?`, toVersion)
	if err != nil {
		return fmt.Errorf("downgrade schema_version: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx; every method below
// fetches one from ctx via tx(ctx).
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (d *DB) tx(ctx context.Context) querier {
	if tx := txn.FromContext(ctx); tx != nil {
		return tx
	}
	return d.db
}
