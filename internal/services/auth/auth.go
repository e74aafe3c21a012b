// Package auth реализует регистрацию и вход по email и паролю.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voiceminder/voiceminder/internal/lib/jwt"
	"github.com/voiceminder/voiceminder/internal/lib/password"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/storage"
)

// Ошибки уровня бизнес-логики, отображаемые пользователю как 4xx.
var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrBadCredentials   = errors.New("invalid email or password")
)

// UserRepository описывает необходимые операции хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service реализует бизнес-логику аутентификации.
type Service struct {
	repo       UserRepository
	maker      jwt.Maker
	ownerEmail string
	log        *slog.Logger
}

// New создает сервис аутентификации.
func New(repo UserRepository, maker jwt.Maker, ownerEmail string, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		maker:      maker,
		ownerEmail: ownerEmail,
		log:        log,
	}
}

// Register создает нового пользователя. Совпадение паролей и занятость
// почты — пользовательские ошибки, а не сбои.
func (s *Service) Register(ctx context.Context, dummy models.DummyRegister) (*models.User, error) {
	const op = "auth.Register"

	if dummy.Password != dummy.ConfirmPassword {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	_, err := s.repo.GetUserByEmail(ctx, dummy.Email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(dummy.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := models.User{
		UUID:            uuid.NewString(),
		Name:            dummy.Name,
		Email:           dummy.Email,
		PasswordHash:    hash,
		Plan:            models.PlanFree,
		IsAdmin:         s.ownerEmail != "" && dummy.Email == s.ownerEmail,
		IsTrialEligible: true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_uid", u.UUID))
	return &u, nil
}

// Login проверяет пароль и выдает JWT токен.
func (s *Service) Login(ctx context.Context, dummy models.DummyLogin) (string, *models.User, error) {
	const op = "auth.Login"

	u, err := s.repo.GetUserByEmail(ctx, dummy.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrBadCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(u.PasswordHash, dummy.Password); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrBadCredentials)
	}

	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	token, err := s.maker.GenerateToken(u.Email, role, u.UUID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_uid", u.UUID))
	return token, u, nil
}
