// Package apperror defines the error taxonomy shared by the service,
// repository, and handler layers.
//
// The pattern: a small set of sentinel errors (ErrNotFound, ErrConflict, ...)
// wrapped by a typed *AppError that carries the human-readable message. Lower
// layers return these; the HTTP layer translates them to status codes in ONE
// place (handler/response.go) using errors.Is / errors.As. Nothing outside the
// handler layer knows about HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel cause, checked with errors.Is
	Message string // human-readable error message, safe to return to clients
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the record identified by key does not exist.
// Read, update, and delete paths use this; it maps to 404.
func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, key),
	}
}

// ValidationFailed reports a malformed or out-of-range input. Maps to 400.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that a create hit an existing record with the same unique
// key. The storage layer raises this when a UNIQUE constraint fires; maps to 409.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists with id %s", resource, key),
	}
}

// Unauthorized reports a credential mismatch or a missing/invalid token.
// Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
