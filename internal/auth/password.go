// Package auth — password hashing and session tokens.
//
// Passwords are hashed with bcrypt, which is deliberately slow and salts every
// hash itself. Fast digests (MD5, SHA-256) are not acceptable for credential
// storage: they can be brute-forced offline at GPU speed. bcrypt's output is
// self-contained — version, cost, salt, and hash in one string — so it is
// stored directly in the users table with no separate salt column.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wtfunko/backend/internal/apperror"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly a quarter
// second on current server hardware — negligible per login, brutal for an
// attacker hashing billions of guesses.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It is a struct rather than free functions so the cost can be injected:
// tests use the minimum cost (4) to avoid paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom bcrypt
// cost. Intended for tests; do not lower the cost in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash derives the salted bcrypt hash of plaintext.
//
// bcrypt silently truncates inputs beyond 72 bytes, so longer passwords are
// rejected explicitly instead of being weakened without the caller knowing.
// The plaintext is never logged or returned.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperror.ValidationFailed("password", "password is required")
	}
	if len(plaintext) > 72 {
		return "", apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext candidate against a stored bcrypt hash.
// A mismatch returns apperror.ErrUnauthorized; the comparison itself is
// constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.Unauthorized("invalid credentials")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
