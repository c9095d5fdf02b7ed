package service

import (
	"context"
	"errors"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type RegistrationService interface {
	Submit(ctx context.Context, email, firstName, lastName string, role domain.UserRole) (*domain.RegistrationRequest, error)
	Approve(ctx context.Context, requestID, approverID string) (*domain.User, error)
	Reject(ctx context.Context, requestID, approverID, reason string) (*domain.RegistrationRequest, error)
	Get(ctx context.Context, id string) (*domain.RegistrationRequest, error)
	List(ctx context.Context, status domain.RegistrationStatus, page repository.PageRequest) ([]domain.RegistrationRequest, *repository.Pagination, error)
}

type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page repository.PageRequest) ([]domain.User, *repository.Pagination, error)
	Search(ctx context.Context, query string, page repository.PageRequest) ([]domain.User, *repository.Pagination, error)
	ChangeStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error)
	ChangeRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error)
}

type ProgramService interface {
	Create(ctx context.Context, title, description, creatorID string, stakeholders []string, startDate, endDate string) (*domain.Program, error)
	Get(ctx context.Context, id string) (*domain.Program, error)
	List(ctx context.Context, page repository.PageRequest) ([]domain.Program, *repository.Pagination, error)
	Launch(ctx context.Context, id string) (*domain.Program, error)
	Stop(ctx context.Context, id string) (*domain.Program, error)
	Archive(ctx context.Context, id string) (*domain.Program, error)
	Delete(ctx context.Context, id string) error
}

type EnrollmentService interface {
	Submit(ctx context.Context, programID, clientName string, accountIDs []string, motivation, requesterID string, contacts []domain.ContactUser) (*domain.EnrollmentRequest, error)
	Approve(ctx context.Context, requestID string) (*domain.Client, error)
	Reject(ctx context.Context, requestID string) (*domain.EnrollmentRequest, error)
	Get(ctx context.Context, id string) (*domain.EnrollmentRequest, error)
	ListByProgram(ctx context.Context, programID string, page repository.PageRequest) ([]domain.EnrollmentRequest, *repository.Pagination, error)
	ListClients(ctx context.Context, programID string, page repository.PageRequest) ([]domain.Client, *repository.Pagination, error)
	SetClientActivity(ctx context.Context, clientID string, active bool) (*domain.Client, error)
}

// EmailService notifies requesters about registration outcomes. Sending
// is best-effort; workflow methods log failures and move on.
type EmailService interface {
	SendRegistrationApproved(ctx context.Context, email, name string) error
	SendRegistrationRejected(ctx context.Context, email, name, reason string) error
}
