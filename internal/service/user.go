// Package service contains the business layer: validation, identifier
// assignment, credential checks, and orchestration across repositories.
// Services accept plain values and return domain errors — they know nothing
// about HTTP, and the handlers know nothing about storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/auth"
	"github.com/wtfunko/backend/internal/ident"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// maxIDAttempts caps the generate-and-insert retry loop when the service
// assigns identifiers. The unique constraint is the collision check; if 100
// fresh identifiers in a row collide, the identifier space is effectively
// saturated and we give up instead of looping forever.
const maxIDAttempts = 100

// UserService handles account business logic: signup, login, profile
// update, and account removal (which cascades to the user's orders).
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult bundles the account and its session token so the handler can
// respond to signup/login in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new account: hashes the password, assigns a fresh
// numeric identifier, and inserts under the store's unique constraints.
//
// A conflict can mean two things — the username is taken, or the generated
// ID collided. The username case is a caller error and is reported as
// Conflict; an ID collision just triggers a regeneration.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		user.ID, err = ident.Numeric(ident.UserIDLength)
		if err != nil {
			return nil, fmt.Errorf("generating user id: %w", err)
		}

		err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create user",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("creating user: %w", err)
		}

		// Disambiguate: taken username vs. ID collision.
		taken, existsErr := s.users.Exists(ctx, username)
		if existsErr != nil {
			return nil, fmt.Errorf("checking username %s: %w", username, existsErr)
		}
		if taken {
			return nil, apperror.Conflict("user", username)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("assigning user id: identifier space exhausted after %d attempts", maxIDAttempts)
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a session token.
// An unknown username reports NotFound; a wrong password reports
// Unauthorized. The plaintext is never logged.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", slog.String("username", username))
		return nil, err
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.Username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))
	return &AuthResult{User: user, Token: token}, nil
}

// Get returns the account for the given username.
func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	return s.users.GetByUsername(ctx, username)
}

// GetByUsernameOrEmail returns the first account matching either value.
func (s *UserService) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	if strings.TrimSpace(username) == "" && strings.TrimSpace(email) == "" {
		return nil, apperror.ValidationFailed("username", "username or email is required")
	}
	return s.users.GetByUsernameOrEmail(ctx, username, email)
}

// Update replaces the account's profile fields. An empty password keeps the
// stored hash; a non-empty one is re-hashed.
func (s *UserService) Update(ctx context.Context, username, email, password string) (*model.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	user.Email = strings.TrimSpace(email)
	if password != "" {
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.String("username", username))
	return user, nil
}

// Delete removes the account and, in the same store transaction, every
// order the account placed.
func (s *UserService) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}

	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}

	s.logger.Info("user deleted with orders cascade", slog.String("username", username))
	return nil
}
