package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

func openMigratedStore(t *testing.T) *Store {
	t.Helper()
	db := openTestDB(t)
	migrator := NewMigrator(db, DefaultRegistry())
	require.NoError(t, migrator.Migrate(context.Background()))
	return NewStore(db)
}

func createTestUser(t *testing.T, store *Store, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "Test", "User", role)
	require.NoError(t, err)
	require.NoError(t, user.SetStatus(domain.UserStatusActive))
	require.NoError(t, store.UserRepository.Create(context.Background(), user))
	return user
}

func createTestProgram(t *testing.T, store *Store, creator *domain.User) *domain.Program {
	t.Helper()
	program, err := domain.NewProgram("Beta Program", "early access to the beta", creator.ID, nil, "2026-01-01", "2026-06-30")
	require.NoError(t, err)
	require.NoError(t, store.ProgramRepository.Create(context.Background(), program))
	return program
}

func TestUserRepository_CreateAndFindByEmail(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "test@example.com", domain.UserRoleProductPeople)

	found, err := store.UserRepository.FindByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.Email, found.Email)
	assert.Equal(t, user.Role, found.Role)
	assert.Equal(t, user.Status, found.Status)
	assert.WithinDuration(t, user.CreatedAt, found.CreatedAt, time.Millisecond)
}

func TestUserRepository_FindByEmailIsCaseSensitive(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	createTestUser(t, store, "Test@Example.com", domain.UserRoleClientManager)

	found, err := store.UserRepository.FindByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = store.UserRepository.FindByEmail(ctx, "Test@Example.com")
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestUserRepository_FindByIDAbsent(t *testing.T) {
	store := openMigratedStore(t)

	found, err := store.UserRepository.FindByID(context.Background(), "7d9a2c1e-0b1f-4f3a-9c3d-0a1b2c3d4e5f")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_Pagination(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		createTestUser(t, store, email, domain.UserRoleClientManager)
	}

	users, pagination, err := store.UserRepository.FindAll(ctx, repository.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, &repository.Pagination{Page: 1, Limit: 2, Total: 3, Pages: 2}, pagination)

	users, pagination, err = store.UserRepository.FindAll(ctx, repository.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, pagination.Pages)
}

func TestUserRepository_PaginationDefaults(t *testing.T) {
	store := openMigratedStore(t)

	_, pagination, err := store.UserRepository.FindAll(context.Background(), repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultPage, pagination.Page)
	assert.Equal(t, repository.DefaultLimit, pagination.Limit)
	assert.Equal(t, 0, pagination.Total)
	assert.Equal(t, 0, pagination.Pages)
}

func TestUserRepository_UpdateMissingIDReturnsNil(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	updated, err := store.UserRepository.Update(ctx, "7d9a2c1e-0b1f-4f3a-9c3d-0a1b2c3d4e5f", map[string]any{
		"status": string(domain.UserStatusInactive),
	})
	require.NoError(t, err)
	assert.Nil(t, updated)

	count, err := store.UserRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUserRepository_UpdateRejectsUnknownColumn(t *testing.T) {
	store := openMigratedStore(t)
	user := createTestUser(t, store, "u@example.com", domain.UserRoleClientManager)

	_, err := store.UserRepository.Update(context.Background(), user.ID, map[string]any{
		"password": "nope",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestUserRepository_UpdateReturnsRefreshedEntity(t *testing.T) {
	store := openMigratedStore(t)
	user := createTestUser(t, store, "u@example.com", domain.UserRoleClientManager)

	updated, err := store.UserRepository.Update(context.Background(), user.ID, map[string]any{
		"status": string(domain.UserStatusInactive),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.UserStatusInactive, updated.Status)
}

func TestUserRepository_DeleteAndExists(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "u@example.com", domain.UserRoleClientManager)

	exists, err := store.UserRepository.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err := store.UserRepository.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.UserRepository.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	exists, err = store.UserRepository.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_Search(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	alice, err := domain.NewUser("alice@example.com", "Alice", "Smith", domain.UserRoleProductPeople)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, alice))
	bob, err := domain.NewUser("bob@example.com", "Bob", "Jones", domain.UserRoleClientManager)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, bob))

	found, _, err := store.UserRepository.Search(ctx, "smith", repository.PageRequest{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, alice.ID, found[0].ID)

	found, _, err = store.UserRepository.Search(ctx, "example.com", repository.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestRegistrationRequestRepository_RoundTrip(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	req, err := domain.NewRegistrationRequest("new@example.com", "New", "Person", domain.UserRoleClientManager)
	require.NoError(t, err)
	require.NoError(t, store.RegistrationRequestRepository.Create(ctx, req))

	pending, err := store.RegistrationRequestRepository.PendingExistsForEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, pending)

	found, err := store.RegistrationRequestRepository.FindByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.RegistrationStatusPending, found.Status)
	assert.Nil(t, found.ApprovedBy)
	assert.Nil(t, found.ApprovedAt)
	assert.Nil(t, found.RejectionReason)
}

func TestProgramRepository_StakeholdersRoundTrip(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	creator := createTestUser(t, store, "creator@example.com", domain.UserRoleProductPeople)
	stakeholder := createTestUser(t, store, "stake@example.com", domain.UserRoleProductPeople)

	program, err := domain.NewProgram("Pilot", "pilot program", creator.ID, []string{stakeholder.ID}, "2026-02-01", "2026-03-01")
	require.NoError(t, err)
	require.NoError(t, store.ProgramRepository.Create(ctx, program))

	found, err := store.ProgramRepository.FindByID(ctx, program.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{stakeholder.ID}, found.Stakeholders)
	assert.Equal(t, domain.ProgramStatusPending, found.Status)
}

func TestStore_ApproveEnrollmentIsAtomic(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	creator := createTestUser(t, store, "creator@example.com", domain.UserRoleProductPeople)
	requester := createTestUser(t, store, "cm@example.com", domain.UserRoleClientManager)
	program := createTestProgram(t, store, creator)

	req, err := domain.NewEnrollmentRequest(program.ID, "Acme Corp", []string{"acct-1", "acct-2"}, "they asked first", requester.ID)
	require.NoError(t, err)
	require.NoError(t, store.EnrollmentRequestRepository.Create(ctx, req))

	contact, err := domain.NewContactUser("Carol", "Contact", "carol@acme.example")
	require.NoError(t, err)
	require.NoError(t, store.ContactUserRepository.Create(ctx, contact))
	require.NoError(t, store.EnrollmentRequestRepository.AddContact(ctx, req.ID, contact.ID))

	require.NoError(t, req.Process(true))
	client, err := domain.NewClientFromRequest(req)
	require.NoError(t, err)

	require.NoError(t, store.ApproveEnrollment(ctx, req, client))

	foundReq, err := store.EnrollmentRequestRepository.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentStatusApproved, foundReq.Status)

	foundClient, err := store.ClientRepository.FindByID(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, foundClient)
	assert.True(t, foundClient.IsActive)
	assert.Equal(t, []string{"acct-1", "acct-2"}, foundClient.AccountIDs)

	contacts, err := store.ClientRepository.ListContacts(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, contact.ID, contacts[0].ID)
}

func TestCascadeDeleteProgramRemovesChildren(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	creator := createTestUser(t, store, "creator@example.com", domain.UserRoleProductPeople)
	requester := createTestUser(t, store, "cm@example.com", domain.UserRoleClientManager)
	program := createTestProgram(t, store, creator)

	req, err := domain.NewEnrollmentRequest(program.ID, "Acme Corp", nil, "motivation", requester.ID)
	require.NoError(t, err)
	require.NoError(t, store.EnrollmentRequestRepository.Create(ctx, req))

	deleted, err := store.ProgramRepository.Delete(ctx, program.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	orphan, err := store.EnrollmentRequestRepository.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan)
}

func TestContactUserRepository_FindByEmail(t *testing.T) {
	store := openMigratedStore(t)
	ctx := context.Background()

	contact, err := domain.NewContactUser("Dana", "Doe", "dana@example.com")
	require.NoError(t, err)
	require.NoError(t, store.ContactUserRepository.Create(ctx, contact))

	found, err := store.ContactUserRepository.FindByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, contact.ID, found.ID)

	missing, err := store.ContactUserRepository.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// End-to-end: migrate, insert, look up, verify the row round-trips.
func TestEndToEndMigrateCreateFind(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, DefaultRegistry())
	require.NoError(t, migrator.Migrate(ctx))
	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, version)

	store := NewStore(db)
	user, err := domain.NewUser("test@example.com", "End", "ToEnd", domain.UserRoleProductPeople)
	require.NoError(t, err)
	require.NoError(t, store.UserRepository.Create(ctx, user))

	found, err := store.UserRepository.FindByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.FirstName, found.FirstName)
	assert.Equal(t, user.LastName, found.LastName)
	assert.Equal(t, user.Role, found.Role)
	assert.Equal(t, user.Status, found.Status)
	assert.True(t, user.CreatedAt.Equal(found.CreatedAt))
	assert.True(t, user.UpdatedAt.Equal(found.UpdatedAt))
}
