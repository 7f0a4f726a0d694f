package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// ServiceError records which operation failed and why.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// translateStoreError maps store sentinels onto domain error kinds. The
// store error stays in the chain.
func translateStoreError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPermission),
		errors.Is(err, domain.ErrConflict):
		return err
	case errors.Is(err, store.ErrNotFound):
		return domain.NewNotFoundError(entity, err)
	case errors.Is(err, store.ErrEmailExists):
		return domain.NewConflictError("email", "email already registered", err)
	case errors.Is(err, store.ErrDuplicate):
		return domain.NewConflictError("", entity+" already exists", err)
	case errors.Is(err, store.ErrInvalidEntity):
		return domain.NewValidationError("", "references a record that does not exist", err)
	}
	return err
}
