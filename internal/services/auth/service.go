// Package auth handles player registration and login.
//
// Passwords are compared as plain text, matching the wire protocol's
// REGISTER/LOGIN semantics. That is a known security gap inherited from
// the original deployment; see DESIGN.md before exposing this beyond a
// trusted LAN.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mikkelsonm/bitboxing/internal/dependencies/clock"
	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

// Service handles user accounts
type Service struct {
	storage storage.Store
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new AuthService
func New(storage storage.Store, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Register creates a new user account. Usernames are immutable and
// never reused; registering an existing name is a state-machine
// violation, not an update.
func (s *Service) Register(ctx context.Context, username, password string) error {
	_, err := s.storage.GetUser(ctx, username)
	if err == nil {
		return model.ErrUserExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	user := &model.User{
		Username:  username,
		Password:  password,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user registered", slog.String("username", username))
	return nil
}

// Login checks a user's credentials. The caller guarantees the user
// exists; an unknown user here is a real fault.
func (s *Service) Login(ctx context.Context, username, password string) error {
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if user.Password != password {
		return model.ErrWrongPassword
	}
	return nil
}

// IsRegistered reports whether a username has an account.
func (s *Service) IsRegistered(ctx context.Context, username string) (bool, error) {
	_, err := s.storage.GetUser(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
