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

type registrationService struct {
	store    *sqlite.Store
	requests repository.RegistrationRequestRepository
	users    repository.UserRepository
	email    EmailService
}

func NewRegistrationService(store *sqlite.Store, email EmailService) RegistrationService {
	return &registrationService{
		store:    store,
		requests: store.RegistrationRequestRepository,
		users:    store.UserRepository,
		email:    email,
	}
}

// Submit records a self-service sign-up. Duplicate sign-ups for an email
// with an existing account or an unprocessed request are rejected.
func (s *registrationService) Submit(ctx context.Context, email, firstName, lastName string, role domain.UserRole) (*domain.RegistrationRequest, error) {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: account already exists for %s", ErrConflict, email)
	}

	pending, err := s.requests.PendingExistsForEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: a pending request already exists for %s", ErrConflict, email)
	}

	req, err := domain.NewRegistrationRequest(email, firstName, lastName, role)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Registration request submitted", "request_id", req.ID, "email", req.Email)
	return req, nil
}

// Approve transitions the request to APPROVED and creates the account in
// ACTIVE status. The outcome email is best-effort.
func (s *registrationService) Approve(ctx context.Context, requestID, approverID string) (*domain.User, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Process(true, "", approverID); err != nil {
		return nil, err
	}

	user, err := domain.NewUser(req.Email, req.FirstName, req.LastName, req.Role)
	if err != nil {
		return nil, err
	}
	if err := user.SetStatus(domain.UserStatusActive); err != nil {
		return nil, err
	}

	if err := s.store.ApproveRegistration(ctx, req, user); err != nil {
		return nil, err
	}

	if err := s.email.SendRegistrationApproved(ctx, user.Email, user.FullName()); err != nil {
		logger.Error("Failed to send approval email", "request_id", requestID, "error", err)
	}
	logger.Info("Registration request approved", "request_id", requestID, "user_id", user.ID, "approved_by", approverID)
	return user, nil
}

// Reject transitions the request to REJECTED with the given reason.
func (s *registrationService) Reject(ctx context.Context, requestID, approverID, reason string) (*domain.RegistrationRequest, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Process(false, reason, approverID); err != nil {
		return nil, err
	}

	updated, err := s.requests.Update(ctx, requestID, map[string]any{
		"status":           string(req.Status),
		"approved_by":      approverID,
		"approved_at":      req.ApprovedAt.UTC().Format(time.RFC3339Nano),
		"rejection_reason": reason,
		"updated_at":       req.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	if err := s.email.SendRegistrationRejected(ctx, req.Email, req.FirstName+" "+req.LastName, reason); err != nil {
		logger.Error("Failed to send rejection email", "request_id", requestID, "error", err)
	}
	logger.Info("Registration request rejected", "request_id", requestID, "approved_by", approverID)
	return updated, nil
}

func (s *registrationService) pendingRequest(ctx context.Context, requestID string) (*domain.RegistrationRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: registration request %s", ErrNotFound, requestID)
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("%w: registration request %s is already %s", ErrConflict, requestID, req.Status)
	}
	return req, nil
}

func (s *registrationService) Get(ctx context.Context, id string) (*domain.RegistrationRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: registration request %s", ErrNotFound, id)
	}
	return req, nil
}

func (s *registrationService) List(ctx context.Context, status domain.RegistrationStatus, page repository.PageRequest) ([]domain.RegistrationRequest, *repository.Pagination, error) {
	if status == "" {
		return s.requests.FindAll(ctx, page)
	}
	return s.requests.FindByStatus(ctx, status, page)
}
