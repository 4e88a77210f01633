// Package apperrors defines the error kinds the services surface to the
// transport layer. Errors are values: handlers match them with errors.Is and
// translate them to HTTP statuses; nothing is retried internally.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced entity does not exist or is
	// inactive/soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrSelfReference means a user attempted an operation against themselves
	// where that is disallowed.
	ErrSelfReference = errors.New("self reference")

	// ErrConflict means the operation would violate the one-record-per-pair
	// invariant or re-request an already pending/accepted/rejected relationship.
	ErrConflict = errors.New("conflict")

	// ErrForbidden means the actor lacks permission for the requested
	// transition.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation means a structural input violation, detected before any
	// mutation is attempted.
	ErrValidation = errors.New("validation failed")
)

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// SelfReferencef wraps ErrSelfReference with a formatted detail message.
func SelfReferencef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrSelfReference}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted detail message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConflict}, args...)...)
}

// Forbiddenf wraps ErrForbidden with a formatted detail message.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrForbidden}, args...)...)
}

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
