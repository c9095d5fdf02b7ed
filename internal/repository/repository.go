package repository

import (
	"context"

	"ab-eam-backend/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageRequest selects a page of results. Zero values fall back to
// DefaultPage / DefaultLimit.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize returns the request with defaults applied.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes the page that was actually returned. Pages is
// ceil(Total/Limit).
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// CRUD is the base contract every entity repository satisfies. Lookups
// return (nil, nil) when the row does not exist; absence is not an error.
type CRUD[E any] interface {
	FindAll(ctx context.Context, page PageRequest) ([]E, *Pagination, error)
	FindByID(ctx context.Context, id string) (*E, error)
	Create(ctx context.Context, entity *E) error
	// Update applies only the given column values and returns the
	// refreshed entity, or nil when no row matched the id.
	Update(ctx context.Context, id string, fields map[string]any) (*E, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type UserRepository interface {
	CRUD[domain.User]
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByRole(ctx context.Context, role domain.UserRole, page PageRequest) ([]domain.User, *Pagination, error)
	FindByStatus(ctx context.Context, status domain.UserStatus, page PageRequest) ([]domain.User, *Pagination, error)
	Search(ctx context.Context, query string, page PageRequest) ([]domain.User, *Pagination, error)
}

type RegistrationRequestRepository interface {
	CRUD[domain.RegistrationRequest]
	FindByStatus(ctx context.Context, status domain.RegistrationStatus, page PageRequest) ([]domain.RegistrationRequest, *Pagination, error)
	PendingExistsForEmail(ctx context.Context, email string) (bool, error)
}

type ProgramRepository interface {
	CRUD[domain.Program]
	FindByStatus(ctx context.Context, status domain.ProgramStatus, page PageRequest) ([]domain.Program, *Pagination, error)
	FindByCreator(ctx context.Context, creatorID string, page PageRequest) ([]domain.Program, *Pagination, error)
}

type EnrollmentRequestRepository interface {
	CRUD[domain.EnrollmentRequest]
	FindByProgram(ctx context.Context, programID string, page PageRequest) ([]domain.EnrollmentRequest, *Pagination, error)
	FindByStatus(ctx context.Context, status domain.EnrollmentStatus, page PageRequest) ([]domain.EnrollmentRequest, *Pagination, error)
	AddContact(ctx context.Context, requestID, contactID string) error
	ListContacts(ctx context.Context, requestID string) ([]domain.ContactUser, error)
}

type ClientRepository interface {
	CRUD[domain.Client]
	FindByProgram(ctx context.Context, programID string, page PageRequest) ([]domain.Client, *Pagination, error)
	AddContact(ctx context.Context, clientID, contactID string) error
	ListContacts(ctx context.Context, clientID string) ([]domain.ContactUser, error)
}

type ContactUserRepository interface {
	CRUD[domain.ContactUser]
	FindByEmail(ctx context.Context, email string) (*domain.ContactUser, error)
}
