package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrBlocked         = errors.New("store blocked")
	ErrVersionMismatch = errors.New("schema version mismatch")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a unique-key violation, e.g. a duplicate category name.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists with name %q", resource, key),
		Field:   "name",
	}
}

// Blocked reports that another connection holds the store, so the
// requested operation (open, destroy) could not acquire it. Not retried
// automatically — the caller decides.
func Blocked(op string) *AppError {
	return &AppError{
		Err:     ErrBlocked,
		Message: fmt.Sprintf("%s blocked by another open connection", op),
	}
}

// VersionMismatch reports that the on-disk schema version is newer than
// this build understands. A stale process must not touch a newer store.
func VersionMismatch(have, want uint64) *AppError {
	return &AppError{
		Err:     ErrVersionMismatch,
		Message: fmt.Sprintf("store schema version %d is newer than supported version %d", have, want),
	}
}
