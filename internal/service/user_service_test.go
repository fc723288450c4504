package service

import (
	"context"
	"errors"
	"testing"

	"formpulse/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_GetUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("maps the stored user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		user := testUser()
		user.Name = util.StringToNullString("Bu Guru")
		user.ProfilePictureURL = util.StringToNullString("https://example.com/p.png")
		userRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()
		svc := NewUserService(userRepo)

		profile, err := svc.GetUserProfile(ctx, user.ID)

		assert.NoError(t, err)
		assert.Equal(t, user.ID, profile.ID)
		assert.Equal(t, user.TenantID, profile.TenantID)
		assert.Equal(t, "guru@example.com", profile.Email)
		assert.Equal(t, "Bu Guru", profile.Name)
		assert.Equal(t, "https://example.com/p.png", profile.Picture)
	})

	t.Run("user not found", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetUserByID", mock.Anything, "missing").Return(nil, nil).Once()
		svc := NewUserService(userRepo)

		_, err := svc.GetUserProfile(ctx, "missing")
		assert.ErrorIs(t, err, ErrUserProfileNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetUserByID", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
		svc := NewUserService(userRepo)

		_, err := svc.GetUserProfile(ctx, "u1")
		assert.Error(t, err)
	})
}
