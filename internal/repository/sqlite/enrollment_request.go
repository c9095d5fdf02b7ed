package sqlite

import (
	"context"
	"fmt"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type enrollmentRequestRepository struct {
	*crud[domain.EnrollmentRequest]
}

func NewEnrollmentRequestRepository(db *DB) repository.EnrollmentRequestRepository {
	return &enrollmentRequestRepository{crud: newCRUD(db, mapper[domain.EnrollmentRequest]{
		table: "enrollment_requests",
		columns: []string{
			"id", "program_id", "client_name", "account_ids", "motivation",
			"status", "requested_by", "created_at", "updated_at",
		},
		fromRow: scanEnrollmentRequest,
		toRow: func(e *domain.EnrollmentRequest) []any {
			return []any{
				e.ID, e.ProgramID, e.ClientName, mustEncodeStrings(e.AccountIDs), e.Motivation,
				string(e.Status), e.RequestedBy, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt),
			}
		},
	})}
}

func scanEnrollmentRequest(row rowScanner) (*domain.EnrollmentRequest, error) {
	var e domain.EnrollmentRequest
	var accountIDs, createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.ProgramID, &e.ClientName, &accountIDs, &e.Motivation,
		&e.Status, &e.RequestedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.AccountIDs, err = decodeStrings(accountIDs); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRequestRepository) FindByProgram(ctx context.Context, programID string, page repository.PageRequest) ([]domain.EnrollmentRequest, *repository.Pagination, error) {
	return r.findWhere(ctx, "program_id = ?", []any{programID}, page)
}

func (r *enrollmentRequestRepository) FindByStatus(ctx context.Context, status domain.EnrollmentStatus, page repository.PageRequest) ([]domain.EnrollmentRequest, *repository.Pagination, error) {
	return r.findWhere(ctx, "status = ?", []any{string(status)}, page)
}

func (r *enrollmentRequestRepository) AddContact(ctx context.Context, requestID, contactID string) error {
	_, _, err := r.db.Run(ctx,
		`INSERT OR IGNORE INTO enrollment_request_contact_users (enrollment_request_id, contact_user_id) VALUES (?, ?)`,
		requestID, contactID)
	if err != nil {
		return fmt.Errorf("link contact to enrollment request: %w", err)
	}
	return nil
}

func (r *enrollmentRequestRepository) ListContacts(ctx context.Context, requestID string) ([]domain.ContactUser, error) {
	rows, err := r.db.All(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.email, c.created_at, c.updated_at
		FROM contact_users c
		JOIN enrollment_request_contact_users link ON link.contact_user_id = c.id
		WHERE link.enrollment_request_id = ?
		ORDER BY c.created_at ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.ContactUser
	for rows.Next() {
		contact, err := scanContactUser(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}
