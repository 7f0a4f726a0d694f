package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer matches exactly one
// of these with errors.Is, which is what the API layer maps to status codes.
var (
	// ErrValidation is returned when input fails domain validation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermission is returned when the actor is not allowed to perform an operation.
	ErrPermission = errors.New("permission denied")

	// ErrConflict is returned when an operation would violate a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned when authentication fails. It is
	// deliberately not distinguished between unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Specific validation sentinels. Each wraps ErrValidation.
var (
	ErrInvalidID          = fmt.Errorf("%w: invalid ID", ErrValidation)
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidPassword    = fmt.Errorf("%w: invalid password", ErrValidation)
	ErrInvalidRole        = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidTitle       = fmt.Errorf("%w: invalid title", ErrValidation)
	ErrInvalidDescription = fmt.Errorf("%w: invalid description", ErrValidation)
	ErrInvalidTaskStatus  = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrDueDateInPast      = fmt.Errorf("%w: due date cannot be in the past", ErrValidation)
	ErrEmptyContent       = fmt.Errorf("%w: content cannot be empty", ErrValidation)
	ErrContentTooLong     = fmt.Errorf("%w: content too long", ErrValidation)
	ErrInactiveUser       = fmt.Errorf("%w: user is inactive", ErrValidation)
)

// ValidationError describes which field failed validation and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError, whatever it wraps.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError. err is usually ErrValidation
// or one of the specific sentinels above and may be nil.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// PermissionError is returned by the authorization policy.
type PermissionError struct {
	Reason string
}

// Error implements the error interface.
func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Reason)
}

// Unwrap returns ErrPermission.
func (e *PermissionError) Unwrap() error {
	return ErrPermission
}

// NewPermissionError creates a PermissionError with the given reason.
func NewPermissionError(reason string) *PermissionError {
	return &PermissionError{Reason: reason}
}

// NotFoundError names the missing entity and keeps the lower-level cause.
type NotFoundError struct {
	Entity string
	Err    error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Unwrap returns the underlying cause, typically a store error.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is reports ErrNotFound for every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the named entity.
func NewNotFoundError(entity string, err error) *NotFoundError {
	return &NotFoundError{Entity: entity, Err: err}
}

// ConflictError reports a uniqueness violation on a field.
type ConflictError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Is reports ErrConflict for every ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a ConflictError.
func NewConflictError(field, message string, err error) *ConflictError {
	return &ConflictError{Field: field, Message: message, Err: err}
}
