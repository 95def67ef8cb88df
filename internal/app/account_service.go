package app

import (
	"context"
	"log/slog"
	"time"

	"quiz-console/internal/domain"
)

// UserRepository persists registered users (pipe-delimited file, SQLite, etc).
// Lookups match usernames case-insensitively.
type UserRepository interface {
	Register(ctx context.Context, user domain.User) error
	Authenticate(ctx context.Context, username, password string) (domain.User, error)
	UpdatePassword(ctx context.Context, username, password string) error
	UpdateDateOfBirth(ctx context.Context, username string, dob time.Time) error
}

// AccountService contains the registration, login and settings use cases.
type AccountService struct {
	users  UserRepository
	logger *slog.Logger
}

func NewAccountService(users UserRepository, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{users: users, logger: logger}
}

// Register creates a user. It fails with domain.ErrDuplicateUser when the name is taken
// and domain.ErrInvalidField when either credential cannot be stored.
func (s *AccountService) Register(ctx context.Context, username, password string, dob time.Time) error {
	if !domain.ValidField(username) || !domain.ValidField(password) {
		return domain.ErrInvalidField
	}
	err := s.users.Register(ctx, domain.User{Username: username, Password: password, DateOfBirth: dob})
	if err != nil {
		s.logger.Info("registration rejected", "user", username, "err", err)
		return err
	}
	s.logger.Info("user registered", "user", username)
	return nil
}

// Login returns the matching user or domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Info("login failed", "user", username)
		return domain.User{}, err
	}
	s.logger.Info("login succeeded", "user", user.Username)
	return user, nil
}

// ChangePassword replaces the user's password. An empty password or one holding
// '|' or a line break returns domain.ErrInvalidField.
func (s *AccountService) ChangePassword(ctx context.Context, username, password string) error {
	if !domain.ValidField(password) {
		return domain.ErrInvalidField
	}
	if err := s.users.UpdatePassword(ctx, username, password); err != nil {
		return err
	}
	s.logger.Info("password updated", "user", username)
	return nil
}

// ChangeDateOfBirth parses raw and stores it; unparsable input returns domain.ErrInvalidDate.
func (s *AccountService) ChangeDateOfBirth(ctx context.Context, username, raw string) error {
	dob, err := domain.ParseDate(raw)
	if err != nil {
		return err
	}
	if err := s.users.UpdateDateOfBirth(ctx, username, dob); err != nil {
		return err
	}
	s.logger.Info("date of birth updated", "user", username)
	return nil
}
