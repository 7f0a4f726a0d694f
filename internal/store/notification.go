package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// NotificationStore defines the interface for notification data persistence.
type NotificationStore interface {
	// Create saves a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByID retrieves a notification by its unique ID.
	// Returns ErrNotificationNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// ListByUser returns notifications addressed to userID, newest first,
	// with TaskTitle populated.
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page domain.Page) ([]*domain.Notification, error)

	// CountUnread returns how many unread notifications userID has.
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)

	// MarkRead sets is_read. Marking an already read notification succeeds.
	// Returns ErrNotificationNotFound if it does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// Delete removes a notification.
	// Returns ErrNotificationNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsUnread reports whether an unread notification of kind already
	// exists for the (task, recipient) pair.
	ExistsUnread(ctx context.Context, taskID, userID uuid.UUID, kind domain.NotificationType) (bool, error)

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) NotificationStore
}
