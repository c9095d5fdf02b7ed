package sqlite

import (
	"context"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

type programRepository struct {
	*crud[domain.Program]
}

func NewProgramRepository(db *DB) repository.ProgramRepository {
	return &programRepository{crud: newCRUD(db, mapper[domain.Program]{
		table: "programs",
		columns: []string{
			"id", "title", "description", "created_by", "stakeholders",
			"start_date", "end_date", "status", "created_at", "updated_at",
		},
		fromRow: scanProgram,
		toRow: func(p *domain.Program) []any {
			return []any{
				p.ID, p.Title, p.Description, p.CreatedBy, mustEncodeStrings(p.Stakeholders),
				p.StartDate, p.EndDate, string(p.Status), fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
			}
		},
	})}
}

func scanProgram(row rowScanner) (*domain.Program, error) {
	var p domain.Program
	var stakeholders, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedBy, &stakeholders,
		&p.StartDate, &p.EndDate, &p.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Stakeholders, err = decodeStrings(stakeholders); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *programRepository) FindByStatus(ctx context.Context, status domain.ProgramStatus, page repository.PageRequest) ([]domain.Program, *repository.Pagination, error) {
	return r.findWhere(ctx, "status = ?", []any{string(status)}, page)
}

func (r *programRepository) FindByCreator(ctx context.Context, creatorID string, page repository.PageRequest) ([]domain.Program, *repository.Pagination, error) {
	return r.findWhere(ctx, "created_by = ?", []any{creatorID}, page)
}
