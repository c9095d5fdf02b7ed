package jobs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ab-eam-backend/internal/config"
	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
	"ab-eam-backend/internal/repository/sqlite"
)

func newJobFixture(t *testing.T) (*JobRunner, *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	db := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, db.Connect())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.NewMigrator(db, sqlite.DefaultRegistry()).Migrate(ctx))

	store := sqlite.NewStore(db)
	return NewJobRunner(store, &config.Config{}), store
}

func seedProgram(t *testing.T, store *sqlite.Store, endDate string, status domain.ProgramStatus) *domain.Program {
	t.Helper()
	ctx := context.Background()

	creator, err := domain.NewUser("creator"+endDate+string(status)+"@example.com", "Pat", "Product", domain.UserRoleProductPeople)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, creator))

	program, err := domain.NewProgram("Beta", "early access", creator.ID, nil, "2020-01-01", endDate)
	require.NoError(t, err)
	program.Status = status
	require.NoError(t, store.ProgramRepository.Create(ctx, program))
	return program
}

func seedClient(t *testing.T, store *sqlite.Store, program *domain.Program) *domain.Client {
	t.Helper()
	ctx := context.Background()

	requester, err := domain.NewUser("cm-"+program.ID+"@example.com", "Max", "Manager", domain.UserRoleClientManager)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, requester))

	req, err := domain.NewEnrollmentRequest(program.ID, "Acme Corp", nil, "motivation", requester.ID)
	require.NoError(t, err)
	require.NoError(t, store.EnrollmentRequestRepository.Create(ctx, req))
	require.NoError(t, req.Process(true))

	client, err := domain.NewClientFromRequest(req)
	require.NoError(t, err)
	require.NoError(t, store.ApproveEnrollment(ctx, req, client))
	return client
}

func TestProgramLifecycleStopsEndedPrograms(t *testing.T) {
	runner, store := newJobFixture(t)
	ctx := context.Background()

	ended := seedProgram(t, store, "2020-12-31", domain.ProgramStatusLive)
	running := seedProgram(t, store, "2099-12-31", domain.ProgramStatusLive)

	runner.ProgramLifecycle()

	found, err := store.ProgramRepository.FindByID(ctx, ended.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStatusStopped, found.Status)

	found, err = store.ProgramRepository.FindByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStatusLive, found.Status)
}

func TestProgramLifecycleDeactivatesClients(t *testing.T) {
	runner, store := newJobFixture(t)
	ctx := context.Background()

	stopped := seedProgram(t, store, "2099-12-31", domain.ProgramStatusStopped)
	live := seedProgram(t, store, "2099-12-31", domain.ProgramStatusLive)

	stoppedClient := seedClient(t, store, stopped)
	liveClient := seedClient(t, store, live)

	runner.ProgramLifecycle()

	found, err := store.ClientRepository.FindByID(ctx, stoppedClient.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	found, err = store.ClientRepository.FindByID(ctx, liveClient.ID)
	require.NoError(t, err)
	assert.True(t, found.IsActive)
}

func TestProgramLifecycleStopsEndedProgramsAcrossPages(t *testing.T) {
	runner, store := newJobFixture(t)
	ctx := context.Background()

	creator, err := domain.NewUser("creator@example.com", "Pat", "Product", domain.UserRoleProductPeople)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, creator))

	// More ended programs than one page (100) holds.
	const total = 150
	for i := 0; i < total; i++ {
		program, err := domain.NewProgram("Beta", "early access", creator.ID, nil, "2020-01-01", "2020-12-31")
		require.NoError(t, err)
		program.Status = domain.ProgramStatusLive
		require.NoError(t, store.ProgramRepository.Create(ctx, program))
	}

	runner.ProgramLifecycle()

	_, pagination, err := store.ProgramRepository.FindByStatus(ctx, domain.ProgramStatusLive, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, pagination.Total, "every ended live program should be stopped in one run")

	_, pagination, err = store.ProgramRepository.FindByStatus(ctx, domain.ProgramStatusStopped, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, total, pagination.Total)
}

func TestProgramLifecycleDeactivatesClientsAcrossPages(t *testing.T) {
	runner, store := newJobFixture(t)
	ctx := context.Background()

	program := seedProgram(t, store, "2099-12-31", domain.ProgramStatusStopped)

	requester, err := domain.NewUser("cm@example.com", "Max", "Manager", domain.UserRoleClientManager)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, requester))

	req, err := domain.NewEnrollmentRequest(program.ID, "Acme Corp", nil, "motivation", requester.ID)
	require.NoError(t, err)
	require.NoError(t, store.EnrollmentRequestRepository.Create(ctx, req))
	require.NoError(t, req.Process(true))

	// More clients than one page (1000) holds.
	const total = 1050
	for i := 0; i < total; i++ {
		client, err := domain.NewClientFromRequest(req)
		require.NoError(t, err)
		require.NoError(t, store.ClientRepository.Create(ctx, client))
	}

	runner.ProgramLifecycle()

	row, err := store.DB().Get(ctx, "SELECT COUNT(*) FROM clients WHERE is_active = 1")
	require.NoError(t, err)
	var active int
	require.NoError(t, row.Scan(&active))
	assert.Equal(t, 0, active, "every client of a stopped program should be deactivated in one run")
}

func TestProgramLifecycleEndToEnd(t *testing.T) {
	runner, store := newJobFixture(t)
	ctx := context.Background()

	program := seedProgram(t, store, "2020-12-31", domain.ProgramStatusLive)
	client := seedClient(t, store, program)

	// First run stops the ended program, second run deactivates its
	// clients; a single run does both because stopping happens first.
	runner.ProgramLifecycle()

	found, err := store.ClientRepository.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}
