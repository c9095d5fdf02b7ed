package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type registrationRequestRepository struct {
	*crud[domain.RegistrationRequest]
}

func NewRegistrationRequestRepository(db *DB) repository.RegistrationRequestRepository {
	return &registrationRequestRepository{crud: newCRUD(db, mapper[domain.RegistrationRequest]{
		table: "registration_requests",
		columns: []string{
			"id", "email", "first_name", "last_name", "role", "status",
			"approved_by", "approved_at", "rejection_reason", "created_at", "updated_at",
		},
		fromRow: scanRegistrationRequest,
		toRow: func(r *domain.RegistrationRequest) []any {
			return []any{
				r.ID, r.Email, r.FirstName, r.LastName, string(r.Role), string(r.Status),
				nullableString(r.ApprovedBy), fmtNullableTime(r.ApprovedAt), nullableString(r.RejectionReason),
				fmtTime(r.CreatedAt), fmtTime(r.UpdatedAt),
			}
		},
	})}
}

func scanRegistrationRequest(row rowScanner) (*domain.RegistrationRequest, error) {
	var r domain.RegistrationRequest
	var approvedBy, approvedAt, rejectionReason sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.Email, &r.FirstName, &r.LastName, &r.Role, &r.Status,
		&approvedBy, &approvedAt, &rejectionReason, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.ApprovedBy = fromNullString(approvedBy)
	r.RejectionReason = fromNullString(rejectionReason)
	var err error
	if r.ApprovedAt, err = parseNullableTime(approvedAt); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *registrationRequestRepository) FindByStatus(ctx context.Context, status domain.RegistrationStatus, page repository.PageRequest) ([]domain.RegistrationRequest, *repository.Pagination, error) {
	return r.findWhere(ctx, "status = ?", []any{string(status)}, page)
}

// PendingExistsForEmail reports whether the email already has an
// unprocessed request, to block duplicate sign-ups.
func (r *registrationRequestRepository) PendingExistsForEmail(ctx context.Context, email string) (bool, error) {
	row, err := r.db.Get(ctx,
		"SELECT 1 FROM registration_requests WHERE email = ? AND status = ? LIMIT 1",
		email, string(domain.RegistrationStatusPending))
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
