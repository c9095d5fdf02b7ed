package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type userRepository struct {
	*crud[domain.User]
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{crud: newCRUD(db, mapper[domain.User]{
		table:   "users",
		columns: []string{"id", "email", "first_name", "last_name", "role", "status", "created_at", "updated_at"},
		fromRow: scanUser,
		toRow: func(u *domain.User) []any {
			return []any{u.ID, u.Email, u.FirstName, u.LastName, string(u.Role), string(u.Status), fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt)}
		},
	})}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail is a case-sensitive exact match, mirroring the UNIQUE
// constraint on the column.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getWhere(ctx, "email = ?", email)
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	row, err := r.db.Get(ctx, "SELECT 1 FROM users WHERE email = ? LIMIT 1", email)
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

func (r *userRepository) FindByRole(ctx context.Context, role domain.UserRole, page repository.PageRequest) ([]domain.User, *repository.Pagination, error) {
	return r.findWhere(ctx, "role = ?", []any{string(role)}, page)
}

func (r *userRepository) FindByStatus(ctx context.Context, status domain.UserStatus, page repository.PageRequest) ([]domain.User, *repository.Pagination, error) {
	return r.findWhere(ctx, "status = ?", []any{string(status)}, page)
}

// Search matches the query as a substring across first name, last name
// and email.
func (r *userRepository) Search(ctx context.Context, query string, page repository.PageRequest) ([]domain.User, *repository.Pagination, error) {
	pattern := "%" + query + "%"
	return r.findWhere(ctx,
		"(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)",
		[]any{pattern, pattern, pattern}, page)
}
