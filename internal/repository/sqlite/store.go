package sqlite

import (
	"context"
	"fmt"
	"time"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

// Store bundles every entity repository over the shared database handle.
type Store struct {
	db *DB
	repository.UserRepository
	repository.RegistrationRequestRepository
	repository.ProgramRepository
	repository.EnrollmentRequestRepository
	repository.ClientRepository
	repository.ContactUserRepository
}

func NewStore(db *DB) *Store {
	return &Store{
		db:                            db,
		UserRepository:                NewUserRepository(db),
		RegistrationRequestRepository: NewRegistrationRequestRepository(db),
		ProgramRepository:             NewProgramRepository(db),
		EnrollmentRequestRepository:   NewEnrollmentRequestRepository(db),
		ClientRepository:              NewClientRepository(db),
		ContactUserRepository:         NewContactUserRepository(db),
	}
}

func (s *Store) DB() *DB {
	return s.db
}

// ApproveRegistration creates the account and marks the request
// approved in one transaction, so a failure on either side leaves
// neither an orphaned user nor a half-processed request.
func (s *Store) ApproveRegistration(ctx context.Context, req *domain.RegistrationRequest, user *domain.User) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("approve registration: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, role, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FirstName, user.LastName, string(user.Role), string(user.Status),
		fmtTime(user.CreatedAt), fmtTime(user.UpdatedAt)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approve registration: insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE registration_requests SET status = ?, approved_by = ?, approved_at = ?, updated_at = ? WHERE id = ?`,
		string(req.Status), nullableString(req.ApprovedBy), fmtNullableTime(req.ApprovedAt),
		fmtTime(req.UpdatedAt), req.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approve registration: update request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("approve registration: commit: %w", err)
	}
	return nil
}

// ApproveEnrollment marks the request approved, creates the client row
// and copies the request's contact links, all in one transaction.
func (s *Store) ApproveEnrollment(ctx context.Context, req *domain.EnrollmentRequest, client *domain.Client) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("approve enrollment: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE enrollment_requests SET status = ?, updated_at = ? WHERE id = ?`,
		string(domain.EnrollmentStatusApproved), fmtTime(now), req.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approve enrollment: update request: %w", err)
	}

	accountIDs, err := encodeStrings(client.AccountIDs)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approve enrollment: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO clients (id, program_id, enrollment_request_id, account_ids, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		client.ID, client.ProgramID, client.EnrollmentRequestID, accountIDs,
		client.IsActive, fmtTime(client.EnrolledAt), fmtTime(client.UpdatedAt)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approve enrollment: insert client: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO client_contact_users (client_id, contact_user_id)
		 SELECT ?, contact_user_id FROM enrollment_request_contact_users WHERE enrollment_request_id = ?`,
		client.ID, req.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approve enrollment: copy contacts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("approve enrollment: commit: %w", err)
	}
	return nil
}
