package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "assetdesk/internal/errors"
	"assetdesk/internal/model"
	"assetdesk/internal/repository"
)

const bcryptCost = 10

// UserService handles admin-side user management.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, name, email, password, role string) (*model.User, error)
	Delete(ctx context.Context, id, actorID uint) error
	EnsureAdmin(ctx context.Context, email, password string) (seeded bool, err error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

// Create registers a user with a hashed password. Admin-only at the transport
// layer; the service validates the payload.
func (s *userService) Create(ctx context.Context, name, email, password, role string) (*model.User, error) {
	var fields []string
	if strings.TrimSpace(name) == "" {
		fields = append(fields, "name is required")
	}
	if strings.TrimSpace(email) == "" {
		fields = append(fields, "email is required")
	}
	if len(password) < 6 {
		fields = append(fields, "password must be at least 6 characters")
	}
	if role == "" {
		role = model.RoleViewer
	} else if !model.ValidRole(role) {
		fields = append(fields, "role must be one of admin, editor, viewer")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields...)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Delete hard-removes a user. A user may not delete themself.
func (s *userService) Delete(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return apperrors.ErrSelfDelete
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EnsureAdmin seeds the first admin account when the user table is empty and
// reports whether it did.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, "Administrator", email, password, model.RoleAdmin); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
