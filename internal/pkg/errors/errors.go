package errors

import "errors"

// Shared application errors. Repositories translate driver errors into these
// so that services and handlers never depend on gorm or redis directly.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a unique constraint or state precondition fails.
	ErrConflict = errors.New("resource state conflict")
)
