package service

import (
	"context"
	"fmt"
	"time"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/logger"
	"ab-eam-backend/internal/repository"
)

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, page repository.PageRequest) ([]domain.User, *repository.Pagination, error) {
	return s.users.FindAll(ctx, page)
}

func (s *userService) Search(ctx context.Context, query string, page repository.PageRequest) ([]domain.User, *repository.Pagination, error) {
	return s.users.Search(ctx, query, page)
}

func (s *userService) ChangeStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetStatus(status); err != nil {
		return nil, err
	}
	updated, err := s.users.Update(ctx, id, map[string]any{
		"status":     string(user.Status),
		"updated_at": user.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("User status changed", "user_id", id, "status", status)
	return updated, nil
}

func (s *userService) ChangeRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(role); err != nil {
		return nil, err
	}
	updated, err := s.users.Update(ctx, id, map[string]any{
		"role":       string(user.Role),
		"updated_at": user.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("User role changed", "user_id", id, "role", role)
	return updated, nil
}
