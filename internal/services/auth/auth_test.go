package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coach-hub/internal/lib/jwt"
	"github.com/magabrotheeeer/coach-hub/internal/lib/password"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestService_Register(t *testing.T) {
	maker := jwt.NewMaker("test-secret", time.Hour)

	t.Run("default role is client", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleClient && u.IsActive && u.PasswordHash != "pass123"
		})).Return("uid-1", nil).Once()

		service := NewService(repo, maker)
		uid, err := service.Register(context.Background(), "a@b.c", "alice", "pass123", "")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
		repo.AssertExpectations(t)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		repo := new(UserRepoMock)
		service := NewService(repo, maker)

		_, err := service.Register(context.Background(), "a@b.c", "alice", "pass123", "superuser")

		require.Error(t, err)
		repo.AssertNotCalled(t, "RegisterUser")
	})
}

func TestService_Login(t *testing.T) {
	maker := jwt.NewMaker("test-secret", time.Hour)
	hash, err := password.GetHash("pass123")
	require.NoError(t, err)

	t.Run("valid credentials yield token and role", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByUsername", mock.Anything, "alice").Return(&models.User{
			UID:          "uid-1",
			Username:     "alice",
			Role:         models.RoleTrainer,
			PasswordHash: hash,
		}, nil).Once()

		service := NewService(repo, maker)
		token, role, err := service.Login(context.Background(), "alice", "pass123")

		require.NoError(t, err)
		assert.Equal(t, models.RoleTrainer, role)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserUID)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByUsername", mock.Anything, "alice").Return(&models.User{
			UID:          "uid-1",
			PasswordHash: hash,
		}, nil).Once()

		service := NewService(repo, maker)
		_, _, err := service.Login(context.Background(), "alice", "wrong")

		require.Error(t, err)
	})

	t.Run("unknown user error is propagated", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByUsername", mock.Anything, "ghost").
			Return(nil, models.ErrUserNotFound).Once()

		service := NewService(repo, maker)
		_, _, err := service.Login(context.Background(), "ghost", "pass123")

		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrUserNotFound))
	})
}
