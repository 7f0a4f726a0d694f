package store

import (
	"errors"
	"fmt"
)

// Store errors. Implementations wrap driver errors with these so services
// never depend on a particular database.
var (
	// ErrNotFound means no row matched.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity means the database rejected the row, for example
	// because a referenced user or task does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed means a transaction could not begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrTaskNotFound         = fmt.Errorf("%w: task", ErrNotFound)
	ErrCommentNotFound      = fmt.Errorf("%w: comment", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	// ErrEmailExists is returned by UserStore.Create for a registered email.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err is any entity's not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is a uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
