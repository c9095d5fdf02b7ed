package service

import (
	"context"
	"fmt"
	"time"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/logger"
	"ab-eam-backend/internal/repository"
)

type programService struct {
	programs repository.ProgramRepository
	users    repository.UserRepository
}

func NewProgramService(programs repository.ProgramRepository, users repository.UserRepository) ProgramService {
	return &programService{programs: programs, users: users}
}

// Create registers a new program. Only product people create programs.
func (s *programService) Create(ctx context.Context, title, description, creatorID string, stakeholders []string, startDate, endDate string) (*domain.Program, error) {
	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, creatorID)
	}
	if creator.Role != domain.UserRoleProductPeople {
		return nil, fmt.Errorf("%w: only product people can create programs", ErrConflict)
	}

	program, err := domain.NewProgram(title, description, creatorID, stakeholders, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, err
	}
	logger.Info("Program created", "program_id", program.ID, "title", program.Title, "created_by", creatorID)
	return program, nil
}

func (s *programService) Get(ctx context.Context, id string) (*domain.Program, error) {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, fmt.Errorf("%w: program %s", ErrNotFound, id)
	}
	return program, nil
}

func (s *programService) List(ctx context.Context, page repository.PageRequest) ([]domain.Program, *repository.Pagination, error) {
	return s.programs.FindAll(ctx, page)
}

func (s *programService) Launch(ctx context.Context, id string) (*domain.Program, error) {
	return s.applyTransition(ctx, id, (*domain.Program).Launch)
}

func (s *programService) Stop(ctx context.Context, id string) (*domain.Program, error) {
	return s.applyTransition(ctx, id, (*domain.Program).Stop)
}

func (s *programService) Archive(ctx context.Context, id string) (*domain.Program, error) {
	return s.applyTransition(ctx, id, (*domain.Program).Archive)
}

func (s *programService) applyTransition(ctx context.Context, id string, transition func(*domain.Program) error) (*domain.Program, error) {
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(program); err != nil {
		return nil, err
	}
	updated, err := s.programs.Update(ctx, id, map[string]any{
		"status":     string(program.Status),
		"updated_at": program.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Program status changed", "program_id", id, "status", program.Status)
	return updated, nil
}

func (s *programService) Delete(ctx context.Context, id string) error {
	deleted, err := s.programs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: program %s", ErrNotFound, id)
	}
	logger.Info("Program deleted", "program_id", id)
	return nil
}
