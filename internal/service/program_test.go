package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type fakeProgramRepo struct {
	repository.ProgramRepository
	byID    map[string]*domain.Program
	updates map[string]map[string]any
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{
		byID:    make(map[string]*domain.Program),
		updates: make(map[string]map[string]any),
	}
}

func (f *fakeProgramRepo) Create(ctx context.Context, program *domain.Program) error {
	f.byID[program.ID] = program
	return nil
}

func (f *fakeProgramRepo) FindByID(ctx context.Context, id string) (*domain.Program, error) {
	return f.byID[id], nil
}

func (f *fakeProgramRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.Program, error) {
	program := f.byID[id]
	if program == nil {
		return nil, nil
	}
	f.updates[id] = fields
	return program, nil
}

func (f *fakeProgramRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

// userLookupRepo serves FindByID from a fixed set of users.
type userLookupRepo struct {
	repository.UserRepository
	byID map[string]*domain.User
}

func (f *userLookupRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return f.byID[id], nil
}

func newServiceUser(t *testing.T, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := domain.NewUser("user@example.com", "Some", "User", role)
	require.NoError(t, err)
	return user
}

func TestProgramCreate(t *testing.T) {
	creator := newServiceUser(t, domain.UserRoleProductPeople)
	programs := newFakeProgramRepo()
	svc := NewProgramService(programs, &userLookupRepo{byID: map[string]*domain.User{creator.ID: creator}})

	program, err := svc.Create(context.Background(), "Beta", "early access", creator.ID, nil, "2026-01-01", "2026-06-30")
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStatusPending, program.Status)
	assert.Contains(t, programs.byID, program.ID)
}

func TestProgramCreateRequiresProductPerson(t *testing.T) {
	manager := newServiceUser(t, domain.UserRoleClientManager)
	svc := NewProgramService(newFakeProgramRepo(), &userLookupRepo{byID: map[string]*domain.User{manager.ID: manager}})

	_, err := svc.Create(context.Background(), "Beta", "early access", manager.ID, nil, "2026-01-01", "2026-06-30")
	require.ErrorIs(t, err, ErrConflict)
}

func TestProgramCreateUnknownCreator(t *testing.T) {
	svc := NewProgramService(newFakeProgramRepo(), &userLookupRepo{byID: map[string]*domain.User{}})

	_, err := svc.Create(context.Background(), "Beta", "early access", "e3b0c442-98fc-4c14-9afb-f4c8996fb924", nil, "2026-01-01", "2026-06-30")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProgramTransitions(t *testing.T) {
	creator := newServiceUser(t, domain.UserRoleProductPeople)
	programs := newFakeProgramRepo()
	svc := NewProgramService(programs, &userLookupRepo{byID: map[string]*domain.User{creator.ID: creator}})

	program, err := svc.Create(context.Background(), "Beta", "early access", creator.ID, nil, "2026-01-01", "2026-06-30")
	require.NoError(t, err)

	launched, err := svc.Launch(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStatusLive, launched.Status)

	// Cannot archive a live program.
	_, err = svc.Archive(context.Background(), program.ID)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	stopped, err := svc.Stop(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStatusStopped, stopped.Status)

	archived, err := svc.Archive(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramStatusArchived, archived.Status)
}

func TestProgramDelete(t *testing.T) {
	creator := newServiceUser(t, domain.UserRoleProductPeople)
	programs := newFakeProgramRepo()
	svc := NewProgramService(programs, &userLookupRepo{byID: map[string]*domain.User{creator.ID: creator}})

	program, err := svc.Create(context.Background(), "Beta", "early access", creator.ID, nil, "2026-01-01", "2026-06-30")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), program.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), program.ID), ErrNotFound)
}

func TestUserServiceChangeStatus(t *testing.T) {
	user := newServiceUser(t, domain.UserRoleClientManager)
	users := &mutableUserRepo{userLookupRepo: userLookupRepo{byID: map[string]*domain.User{user.ID: user}}}
	svc := NewUserService(users)

	updated, err := svc.ChangeStatus(context.Background(), user.ID, domain.UserStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusInactive, updated.Status)

	_, err = svc.ChangeStatus(context.Background(), user.ID, domain.UserStatus("BOGUS"))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestUserServiceGetMissing(t *testing.T) {
	svc := NewUserService(&mutableUserRepo{userLookupRepo: userLookupRepo{byID: map[string]*domain.User{}}})

	_, err := svc.Get(context.Background(), "e3b0c442-98fc-4c14-9afb-f4c8996fb924")
	require.ErrorIs(t, err, ErrNotFound)
}

type mutableUserRepo struct {
	userLookupRepo
}

func (f *mutableUserRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	return f.byID[id], nil
}
