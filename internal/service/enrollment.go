package service

import (
	"context"
	"fmt"
	"time"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/logger"
	"ab-eam-backend/internal/repository"
	"ab-eam-backend/internal/repository/sqlite"
)

type enrollmentService struct {
	store    *sqlite.Store
	programs repository.ProgramRepository
	users    repository.UserRepository
}

func NewEnrollmentService(store *sqlite.Store, programs repository.ProgramRepository, users repository.UserRepository) EnrollmentService {
	return &enrollmentService{store: store, programs: programs, users: users}
}

// Submit records an enrollment request for a program. Contacts are
// de-duplicated by email against existing contact records.
func (s *enrollmentService) Submit(ctx context.Context, programID, clientName string, accountIDs []string, motivation, requesterID string, contacts []domain.ContactUser) (*domain.EnrollmentRequest, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, fmt.Errorf("%w: program %s", ErrNotFound, programID)
	}
	if program.Status == domain.ProgramStatusArchived {
		return nil, fmt.Errorf("%w: program %s is archived", ErrConflict, programID)
	}

	requester, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, requesterID)
	}

	req, err := domain.NewEnrollmentRequest(programID, clientName, accountIDs, motivation, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.store.EnrollmentRequestRepository.Create(ctx, req); err != nil {
		return nil, err
	}

	for _, contact := range contacts {
		linked, err := s.ensureContact(ctx, contact)
		if err != nil {
			return nil, err
		}
		if err := s.store.EnrollmentRequestRepository.AddContact(ctx, req.ID, linked.ID); err != nil {
			return nil, err
		}
		req.Contacts = append(req.Contacts, *linked)
	}

	logger.Info("Enrollment request submitted", "request_id", req.ID, "program_id", programID, "client", clientName)
	return req, nil
}

// ensureContact reuses the stored contact for the email or creates one.
func (s *enrollmentService) ensureContact(ctx context.Context, contact domain.ContactUser) (*domain.ContactUser, error) {
	existing, err := s.store.ContactUserRepository.FindByEmail(ctx, contact.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	created, err := domain.NewContactUser(contact.FirstName, contact.LastName, contact.Email)
	if err != nil {
		return nil, err
	}
	if err := s.store.ContactUserRepository.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Approve enrolls the client: the request flips to APPROVED, the client
// row is created and contact links are copied, atomically.
func (s *enrollmentService) Approve(ctx context.Context, requestID string) (*domain.Client, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Process(true); err != nil {
		return nil, err
	}
	client, err := domain.NewClientFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.ApproveEnrollment(ctx, req, client); err != nil {
		return nil, err
	}
	logger.Info("Enrollment request approved", "request_id", requestID, "client_id", client.ID)
	return client, nil
}

func (s *enrollmentService) Reject(ctx context.Context, requestID string) (*domain.EnrollmentRequest, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Process(false); err != nil {
		return nil, err
	}
	updated, err := s.store.EnrollmentRequestRepository.Update(ctx, requestID, map[string]any{
		"status":     string(req.Status),
		"updated_at": req.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Enrollment request rejected", "request_id", requestID)
	return updated, nil
}

func (s *enrollmentService) pendingRequest(ctx context.Context, requestID string) (*domain.EnrollmentRequest, error) {
	req, err := s.store.EnrollmentRequestRepository.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: enrollment request %s", ErrNotFound, requestID)
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("%w: enrollment request %s is already %s", ErrConflict, requestID, req.Status)
	}
	req.Contacts, err = s.store.EnrollmentRequestRepository.ListContacts(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *enrollmentService) Get(ctx context.Context, id string) (*domain.EnrollmentRequest, error) {
	req, err := s.store.EnrollmentRequestRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: enrollment request %s", ErrNotFound, id)
	}
	req.Contacts, err = s.store.EnrollmentRequestRepository.ListContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *enrollmentService) ListByProgram(ctx context.Context, programID string, page repository.PageRequest) ([]domain.EnrollmentRequest, *repository.Pagination, error) {
	return s.store.EnrollmentRequestRepository.FindByProgram(ctx, programID, page)
}

func (s *enrollmentService) ListClients(ctx context.Context, programID string, page repository.PageRequest) ([]domain.Client, *repository.Pagination, error) {
	return s.store.ClientRepository.FindByProgram(ctx, programID, page)
}

// SetClientActivity toggles the engagement flag on an enrolled client.
func (s *enrollmentService) SetClientActivity(ctx context.Context, clientID string, active bool) (*domain.Client, error) {
	client, err := s.store.ClientRepository.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client %s", ErrNotFound, clientID)
	}
	client.SetActive(active)
	updated, err := s.store.ClientRepository.Update(ctx, clientID, map[string]any{
		"is_active":  client.IsActive,
		"updated_at": client.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Client activity changed", "client_id", clientID, "active", active)
	return updated, nil
}
