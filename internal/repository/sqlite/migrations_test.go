package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, db.Connect())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, table string) bool {
	t.Helper()
	row, err := db.Get(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	require.NoError(t, err)
	var count int
	require.NoError(t, row.Scan(&count))
	return count > 0
}

func testRegistry(t *testing.T, migrations ...Migration) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, m := range migrations {
		require.NoError(t, registry.Add(m))
	}
	return registry
}

func TestRegistryRejectsDuplicateVersions(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Add(Migration{Version: 1, Name: "one", Up: "CREATE TABLE a (id TEXT)"}))

	err := registry.Add(Migration{Version: 1, Name: "other", Up: "CREATE TABLE b (id TEXT)"})
	require.ErrorIs(t, err, ErrDuplicateVersion)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistrySortsByVersion(t *testing.T) {
	registry := testRegistry(t,
		Migration{Version: 3, Name: "three", Up: "CREATE TABLE c (id TEXT)"},
		Migration{Version: 1, Name: "one", Up: "CREATE TABLE a (id TEXT)"},
		Migration{Version: 2, Name: "two", Up: "CREATE TABLE b (id TEXT)"},
	)

	versions := []int{}
	for _, m := range registry.All() {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int{1, 2, 3}, versions)
}

func TestMigrateAppliesAllPending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, DefaultRegistry())
	require.NoError(t, migrator.Migrate(ctx))

	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{
		"users", "registration_requests", "programs", "contact_users",
		"enrollment_requests", "enrollment_request_contact_users",
		"clients", "client_contact_users", "migrations",
	} {
		assert.Truef(t, tableExists(t, db, table), "expected table %s to exist", table)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, DefaultRegistry())
	require.NoError(t, migrator.Migrate(ctx))

	pending, err := migrator.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second run must change nothing.
	require.NoError(t, migrator.Migrate(ctx))

	records, err := migrator.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, "initial_schema", records[0].Name)
}

func TestMigrateIsAtomicPerMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	registry := testRegistry(t,
		Migration{Version: 1, Name: "create_a", Up: "CREATE TABLE test_a (id TEXT PRIMARY KEY)"},
		Migration{
			Version: 2,
			Name:    "create_b_then_fail",
			Up:      "CREATE TABLE test_b (id TEXT PRIMARY KEY); CREATE TABLE test_a (id TEXT PRIMARY KEY)",
		},
		Migration{Version: 3, Name: "never_reached", Up: "CREATE TABLE test_c (id TEXT PRIMARY KEY)"},
	)

	migrator := NewMigrator(db, registry)
	err := migrator.Migrate(ctx)
	require.Error(t, err)

	// v1 committed, v2 rolled back entirely, v3 never attempted.
	version, verr := migrator.CurrentVersion(ctx)
	require.NoError(t, verr)
	assert.Equal(t, 1, version)
	assert.True(t, tableExists(t, db, "test_a"))
	assert.False(t, tableExists(t, db, "test_b"))
	assert.False(t, tableExists(t, db, "test_c"))
}

func TestFailedMigrationLeavesVersionUnchanged(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	registry := testRegistry(t,
		Migration{Version: 1, Name: "broken", Up: "THIS IS NOT SQL"},
	)
	migrator := NewMigrator(db, registry)

	require.Error(t, migrator.Migrate(ctx))

	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestRollbackRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, DefaultRegistry())
	require.NoError(t, migrator.Migrate(ctx))

	require.NoError(t, migrator.Rollback(ctx))

	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	assert.False(t, tableExists(t, db, "users"))

	// Migrating again restores the same applied-version set.
	require.NoError(t, migrator.Migrate(ctx))
	version, err = migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.True(t, tableExists(t, db, "users"))
}

func TestRollbackWithoutDownScriptIsNoOp(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	registry := testRegistry(t,
		Migration{Version: 1, Name: "one_way", Up: "CREATE TABLE one_way (id TEXT PRIMARY KEY)"},
	)
	migrator := NewMigrator(db, registry)
	require.NoError(t, migrator.Migrate(ctx))

	require.NoError(t, migrator.Rollback(ctx))

	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.True(t, tableExists(t, db, "one_way"))
}

func TestRollbackOnEmptyDatabaseIsNoOp(t *testing.T) {
	db := openTestDB(t)

	migrator := NewMigrator(db, DefaultRegistry())
	require.NoError(t, migrator.Rollback(context.Background()))
}

func TestStatusMatchesPending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	registry := testRegistry(t,
		Migration{Version: 1, Name: "one", Up: "CREATE TABLE a (id TEXT)"},
		Migration{Version: 2, Name: "two", Up: "CREATE TABLE b (id TEXT)"},
	)
	migrator := NewMigrator(db, registry)

	status, err := migrator.Status(ctx)
	require.NoError(t, err)
	pending, err := migrator.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(pending), status.PendingCount)
	assert.Equal(t, 0, status.CurrentVersion)
	assert.Equal(t, 2, status.TotalMigrations)

	require.NoError(t, migrator.Migrate(ctx))

	status, err = migrator.Status(ctx)
	require.NoError(t, err)
	pending, err = migrator.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(pending), status.PendingCount)
	assert.Equal(t, 0, status.PendingCount)
	assert.Equal(t, 2, status.CurrentVersion)
}

func TestOperationsOnUnconnectedHandle(t *testing.T) {
	db := New(filepath.Join(t.TempDir(), "never-opened.db"))
	ctx := context.Background()

	_, _, err := db.Run(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = db.Get(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = db.All(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = db.Begin(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)

	// Close on a never-opened handle is a no-op.
	assert.NoError(t, db.Close())
}

func TestConnectIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Connect())
	assert.True(t, db.Connected())

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	assert.False(t, db.Connected())
}
