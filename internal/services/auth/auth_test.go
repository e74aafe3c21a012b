package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voiceminder/voiceminder/internal/lib/jwt"
	"github.com/voiceminder/voiceminder/internal/lib/password"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/storage"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, u models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *UserRepositoryMock) *Service {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return New(repo, maker, "owner@example.com", newNoopLogger())
}

func TestRegister(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(nil, storage.ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "user@example.com" &&
			u.Plan == models.PlanFree &&
			u.IsTrialEligible &&
			!u.IsAdmin &&
			u.PasswordHash != "secret123"
	})).Return(nil)

	svc := newService(repo)

	u, err := svc.Register(context.Background(), models.DummyRegister{
		Name:            "Alex",
		Email:           "user@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.UUID)
	repo.AssertExpectations(t)
}

func TestRegister_OwnerBecomesAdmin(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("GetUserByEmail", mock.Anything, "owner@example.com").Return(nil, storage.ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.IsAdmin
	})).Return(nil)

	svc := newService(repo)

	_, err := svc.Register(context.Background(), models.DummyRegister{
		Name:            "Owner",
		Email:           "owner@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{}, nil)

	svc := newService(repo)

	_, err := svc.Register(context.Background(), models.DummyRegister{
		Name:            "Alex",
		Email:           "user@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc := newService(new(UserRepositoryMock))

	_, err := svc.Register(context.Background(), models.DummyRegister{
		Name:            "Alex",
		Email:           "user@example.com",
		Password:        "secret123",
		ConfirmPassword: "different",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo := new(UserRepositoryMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		UUID:         "uid-1",
		Email:        "user@example.com",
		PasswordHash: hash,
	}, nil)

	svc := newService(repo)

	token, u, err := svc.Login(context.Background(), models.DummyLogin{
		Email:    "user@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-1", u.UUID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo := new(UserRepositoryMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		PasswordHash: hash,
	}, nil)

	svc := newService(repo)

	_, _, err = svc.Login(context.Background(), models.DummyLogin{
		Email:    "user@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, storage.ErrNotFound)

	svc := newService(repo)

	_, _, err := svc.Login(context.Background(), models.DummyLogin{
		Email:    "ghost@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrBadCredentials)
}
