package sqlite

import (
	"context"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type contactUserRepository struct {
	*crud[domain.ContactUser]
}

func NewContactUserRepository(db *DB) repository.ContactUserRepository {
	return &contactUserRepository{crud: newCRUD(db, mapper[domain.ContactUser]{
		table:   "contact_users",
		columns: []string{"id", "first_name", "last_name", "email", "created_at", "updated_at"},
		fromRow: scanContactUser,
		toRow: func(c *domain.ContactUser) []any {
			return []any{c.ID, c.FirstName, c.LastName, c.Email, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt)}
		},
	})}
}

func scanContactUser(row rowScanner) (*domain.ContactUser, error) {
	var c domain.ContactUser
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByEmail backs contact de-duplication: one contact record per email
// shared across enrollment requests and clients.
func (r *contactUserRepository) FindByEmail(ctx context.Context, email string) (*domain.ContactUser, error) {
	return r.getWhere(ctx, "email = ?", email)
}
