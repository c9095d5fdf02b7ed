package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ab-eam-backend/internal/logger"
)

var (
	// ErrDuplicateVersion is returned when two migrations are registered
	// under the same version number.
	ErrDuplicateVersion = errors.New("sqlite: duplicate migration version")
)

// Migration is a versioned schema change-set. Down is optional; a
// migration without it cannot be rolled back.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Registry holds the ordered list of known migrations. It performs no I/O.
type Registry struct {
	migrations []Migration
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a migration and keeps the list sorted by ascending
// version. Versions must be positive and unique.
func (r *Registry) Add(m Migration) error {
	if m.Version <= 0 {
		return fmt.Errorf("sqlite: migration version must be positive, got %d", m.Version)
	}
	if m.Name == "" {
		return fmt.Errorf("sqlite: migration v%d has no name", m.Version)
	}
	if m.Up == "" {
		return fmt.Errorf("sqlite: migration v%d has no up script", m.Version)
	}
	for _, existing := range r.migrations {
		if existing.Version == m.Version {
			return fmt.Errorf("%w: v%d (%s vs %s)", ErrDuplicateVersion, m.Version, existing.Name, m.Name)
		}
	}
	r.migrations = append(r.migrations, m)
	sort.Slice(r.migrations, func(i, j int) bool { return r.migrations[i].Version < r.migrations[j].Version })
	return nil
}

// All returns a copy of the registered migrations in ascending order.
func (r *Registry) All() []Migration {
	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

func (r *Registry) Len() int {
	return len(r.migrations)
}

// MigrationRecord is one row of the append-only bookkeeping table.
type MigrationRecord struct {
	ID        int64
	Version   int
	Name      string
	AppliedAt time.Time
}

// Status is a point-in-time snapshot of migration progress. It is not
// transactionally consistent with a concurrent migration run; migrations
// are expected to run single-threaded at boot.
type Status struct {
	CurrentVersion  int `json:"current_version"`
	PendingCount    int `json:"pending_count"`
	TotalMigrations int `json:"total_migrations"`
}

// Migrator applies registered migrations against the database, one
// transaction per migration.
type Migrator struct {
	db          *DB
	registry    *Registry
	initialized bool
}

func NewMigrator(db *DB, registry *Registry) *Migrator {
	return &Migrator{db: db, registry: registry}
}

// ensureTable lazily creates the bookkeeping table before first use.
func (m *Migrator) ensureTable(ctx context.Context) error {
	if m.initialized {
		return nil
	}
	_, _, err := m.db.Run(ctx, `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("sqlite: create migrations table: %w", err)
	}
	m.initialized = true
	return nil
}

// CurrentVersion returns the highest applied version, or zero when no
// migration has been applied.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	row, err := m.db.Get(ctx, `SELECT COALESCE(MAX(version), 0) FROM migrations`)
	if err != nil {
		return 0, err
	}
	var version int
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("sqlite: read current version: %w", err)
	}
	return version, nil
}

// Pending returns registered migrations newer than the current version,
// in ascending order.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, migration := range m.registry.All() {
		if migration.Version > current {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Migrate applies every pending migration in order. Each migration runs
// in its own transaction together with its bookkeeping row, so a failure
// reverts that one migration and aborts the rest of the batch, leaving
// the schema at the last successfully applied version.
func (m *Migrator) Migrate(ctx context.Context) error {
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Debug("No pending migrations")
		return nil
	}

	for _, migration := range pending {
		if err := m.apply(ctx, migration); err != nil {
			return err
		}
		logger.Info("Applied migration", "version", migration.Version, "name", migration.Name)
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: begin migration v%d: %w", migration.Version, err)
	}
	if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: migration v%d (%s): %w", migration.Version, migration.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		migration.Version, migration.Name, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: record migration v%d: %w", migration.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit migration v%d: %w", migration.Version, err)
	}
	return nil
}

// Rollback reverts the most recently applied migration. It is a no-op
// when nothing is applied, when the applied version is not registered,
// or when the migration declares no down script.
func (m *Migrator) Rollback(ctx context.Context) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}

	var target *Migration
	for _, migration := range m.registry.All() {
		if migration.Version == current {
			target = &migration
			break
		}
	}
	if target == nil || target.Down == "" {
		logger.Warn("No reversible migration at current version, skipping rollback", "version", current)
		return nil
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: begin rollback v%d: %w", current, err)
	}
	if _, err := tx.ExecContext(ctx, target.Down); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: rollback v%d (%s): %w", current, target.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM migrations WHERE version = ?`, current); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: delete migration record v%d: %w", current, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit rollback v%d: %w", current, err)
	}
	logger.Info("Rolled back migration", "version", current, "name", target.Name)
	return nil
}

// Status reports where the schema stands relative to the registry.
func (m *Migrator) Status(ctx context.Context) (*Status, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		CurrentVersion:  current,
		PendingCount:    len(pending),
		TotalMigrations: m.registry.Len(),
	}, nil
}

// Applied returns the bookkeeping rows in application order.
func (m *Migrator) Applied(ctx context.Context) ([]MigrationRecord, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.db.All(ctx, `SELECT id, version, name, applied_at FROM migrations ORDER BY version ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var rec MigrationRecord
		var appliedAt string
		if err := rows.Scan(&rec.ID, &rec.Version, &rec.Name, &appliedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan migration record: %w", err)
		}
		rec.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse applied_at %q: %w", appliedAt, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
