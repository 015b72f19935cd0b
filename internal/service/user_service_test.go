package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "assetdesk/internal/errors"
	"assetdesk/internal/model"
)

func TestUserService_Create(t *testing.T) {
	t.Run("hashes password and defaults role", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Role == model.RoleViewer && u.PasswordHash != "secret99" && u.Email == "new@example.com"
		})).Return(nil)

		svc := NewUserService(mockRepo)
		user, err := svc.Create(context.Background(), "New User", "New@Example.com", "secret99", "")

		assert.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown role and short password in one message", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository))
		_, err := svc.Create(context.Background(), "X", "x@example.com", "123", "owner")

		var validationErr *apperrors.ValidationError
		if assert.ErrorAs(t, err, &validationErr) {
			assert.Len(t, validationErr.Fields, 2)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)

		svc := NewUserService(mockRepo)
		_, err := svc.Create(context.Background(), "Dup", "dup@example.com", "secret99", model.RoleEditor)

		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("deletes another user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, uint(3)).Return(nil)

		svc := NewUserService(mockRepo)
		assert.NoError(t, svc.Delete(context.Background(), 3, 1))
	})

	t.Run("self-delete is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)

		assert.ErrorIs(t, svc.Delete(context.Background(), 1, 1), apperrors.ErrSelfDelete)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing user maps to not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, uint(9)).Return(gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo)
		assert.ErrorIs(t, svc.Delete(context.Background(), 9, 1), apperrors.ErrUserNotFound)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	t.Run("seeds admin when table is empty", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Count", mock.Anything).Return(int64(0), nil)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Role == model.RoleAdmin && u.Email == "admin@example.com"
		})).Return(nil)

		svc := NewUserService(mockRepo)
		seeded, err := svc.EnsureAdmin(context.Background(), "admin@example.com", "admin123")
		assert.NoError(t, err)
		assert.True(t, seeded)
		mockRepo.AssertExpectations(t)
	})

	t.Run("does nothing when users exist", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Count", mock.Anything).Return(int64(4), nil)

		svc := NewUserService(mockRepo)
		seeded, err := svc.EnsureAdmin(context.Background(), "admin@example.com", "admin123")
		assert.NoError(t, err)
		assert.False(t, seeded)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
