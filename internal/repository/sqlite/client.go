package sqlite

import (
	"context"
	"fmt"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type clientRepository struct {
	*crud[domain.Client]
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{crud: newCRUD(db, mapper[domain.Client]{
		table: "clients",
		columns: []string{
			"id", "program_id", "enrollment_request_id", "account_ids",
			"is_active", "created_at", "updated_at",
		},
		fromRow: scanClient,
		toRow: func(c *domain.Client) []any {
			return []any{
				c.ID, c.ProgramID, c.EnrollmentRequestID, mustEncodeStrings(c.AccountIDs),
				c.IsActive, fmtTime(c.EnrolledAt), fmtTime(c.UpdatedAt),
			}
		},
	})}
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	var accountIDs, createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.ProgramID, &c.EnrollmentRequestID, &accountIDs,
		&c.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.AccountIDs, err = decodeStrings(accountIDs); err != nil {
		return nil, err
	}
	if c.EnrolledAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) FindByProgram(ctx context.Context, programID string, page repository.PageRequest) ([]domain.Client, *repository.Pagination, error) {
	return r.findWhere(ctx, "program_id = ?", []any{programID}, page)
}

func (r *clientRepository) AddContact(ctx context.Context, clientID, contactID string) error {
	_, _, err := r.db.Run(ctx,
		`INSERT OR IGNORE INTO client_contact_users (client_id, contact_user_id) VALUES (?, ?)`,
		clientID, contactID)
	if err != nil {
		return fmt.Errorf("link contact to client: %w", err)
	}
	return nil
}

func (r *clientRepository) ListContacts(ctx context.Context, clientID string) ([]domain.ContactUser, error) {
	rows, err := r.db.All(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.email, c.created_at, c.updated_at
		FROM contact_users c
		JOIN client_contact_users link ON link.contact_user_id = c.id
		WHERE link.client_id = ?
		ORDER BY c.created_at ASC`, clientID)
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
