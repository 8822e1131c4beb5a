package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// UserStore implements repository.UserRepository on the shared pool.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user. Duplicate username or ID surfaces as
// apperror.Conflict through the table's unique constraints — the insert
// itself is the existence check, so there is no check-then-insert race.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash)
		 VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Username, err)
	}
	return nil
}

// Exists reports whether a user with the given username is stored.
func (s *UserStore) Exists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user %s: %w", username, err)
	}
	return true, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash
		 FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}
	return &u, nil
}

// GetByUsernameOrEmail returns the first user matching either value (the
// account lookup the storefront uses).
func (s *UserStore) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var u model.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash
		 FROM users WHERE username = ? OR email = ?
		 LIMIT 1`,
		username, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s/%s: %w", username, email, err)
	}
	return &u, nil
}

// Update replaces the user's email and password hash wholesale, keyed by
// username. RowsAffected == 0 means the WHERE matched nothing — not found.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ? WHERE username = ?`,
		user.Email, user.PasswordHash, user.Username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.Username, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.Username)
	}
	return nil
}

// Delete removes the user and every order placed under that username in a
// single transaction, so an account removal can never leave orphaned orders.
func (s *UserStore) Delete(ctx context.Context, username string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM orders WHERE username = ?`, username,
	); err != nil {
		return fmt.Errorf("sqlite: deleting orders for user %s: %w", username, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM users WHERE username = ?`, username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", username)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit user delete: %w", err)
	}
	return nil
}

func (s *UserStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting all users: %w", err)
	}
	return result.RowsAffected()
}
