package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ab-eam-backend/internal/logger"
)

const (
	pragmaForeignKeysOn  = `PRAGMA foreign_keys=ON`
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

var (
	// ErrNotConnected is returned when a statement is issued before
	// Connect or after Close. This is a programming error, not a
	// retryable condition.
	ErrNotConnected = errors.New("sqlite: not connected")
)

// DB wraps the single embedded database connection. One DB serves the
// whole process; transactions do not nest, callers must serialize
// transactional sections.
type DB struct {
	path string
	db   *sql.DB
}

// New returns an unconnected handle for the database file at path.
func New(path string) *DB {
	return &DB{path: path}
}

// NewFromSQL wraps an already-open connection. Pragmas are assumed to be
// configured by the caller.
func NewFromSQL(db *sql.DB) *DB {
	return &DB{db: db}
}

// Connect opens the database file, creating the parent directory if
// absent, and enables foreign-key enforcement and WAL journaling.
// Calling Connect on a connected handle is a no-op.
func (d *DB) Connect() error {
	if d.db != nil {
		return nil
	}
	if d.path == "" {
		return fmt.Errorf("sqlite: empty database path")
	}

	if dir := filepath.Dir(d.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sqlite: create parent dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", d.path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", d.path, err)
	}

	for _, stmt := range []string{pragmaForeignKeysOn, pragmaJournalModeWAL, pragmaBusyTimeout} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("sqlite: configure %q: %w", stmt, err)
		}
	}

	d.db = db
	return nil
}

// Run executes a mutating statement and reports affected rows plus the
// last inserted rowid.
func (d *DB) Run(ctx context.Context, query string, args ...any) (affected, lastInsertID int64, err error) {
	if d.db == nil {
		return 0, 0, ErrNotConnected
	}
	logger.DatabaseCall("run", query)
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("run", 0, err)
		return 0, 0, err
	}
	affected, _ = res.RowsAffected()
	lastInsertID, _ = res.LastInsertId()
	logger.DatabaseResult("run", affected, nil)
	return affected, lastInsertID, nil
}

// Get runs a query expected to return at most one row.
func (d *DB) Get(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}
	logger.DatabaseCall("get", query)
	return d.db.QueryRowContext(ctx, query, args...), nil
}

// All runs a query returning a possibly-empty ordered sequence of rows.
func (d *DB) All(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}
	logger.DatabaseCall("all", query)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("all", 0, err)
	}
	return rows, err
}

// Begin starts a transaction.
func (d *DB) Begin(ctx context.Context) (*sql.Tx, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db.BeginTx(ctx, nil)
}

// Ping verifies the connection is usable.
func (d *DB) Ping(ctx context.Context) error {
	if d.db == nil {
		return ErrNotConnected
	}
	return d.db.PingContext(ctx)
}

// Close releases the connection. Safe to call when already closed.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Connected reports whether the handle currently holds a connection.
func (d *DB) Connected() bool {
	return d != nil && d.db != nil
}
