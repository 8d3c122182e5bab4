// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/userbase/userbase/internal/metrics"
	"github.com/userbase/userbase/internal/model"
	"github.com/userbase/userbase/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("user with this email already exists")
)

// UserService handles user business logic.
type UserService struct {
	store   repository.UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store repository.UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user.
// Fields are assumed already validated by the boundary layer.
type CreateUserInput struct {
	Name  string
	Email string
}

// UpdateUserInput defines input for a partial user update.
// Nil fields are left unchanged.
type UpdateUserInput struct {
	ID    string
	Name  *string
	Email *string
}

// UserPage is one page of users plus pagination counts.
type UserPage struct {
	Users      []*model.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CreateUser creates a new user, enforcing email uniqueness.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	_, err := s.store.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// The unique index backstops the pre-check when two creates race.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of users ordered by creation time, newest
// first. Page and limit are assumed already validated and defaulted by
// the boundary layer. A page past the end returns an empty page, not an
// error.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	offset := (page - 1) * limit

	users, total, err := s.store.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateUser applies a partial update. Email uniqueness is re-checked
// only when the email is supplied and differs from the current value.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	existing, err := s.store.GetUserByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if input.Email != nil && *input.Email != existing.Email {
		_, err := s.store.GetUserByEmail(ctx, *input.Email)
		if err == nil {
			return nil, ErrEmailExists
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
	}

	updated, err := s.store.UpdateUser(ctx, input.ID, input.Name, input.Email, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncUserUpdated()

	return updated, nil
}

// DeleteUser removes a user permanently.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.metrics.IncUserDeleted()

	return nil
}

// totalPages computes ceil(total/limit).
func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
