package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/policy"
	"github.com/phrazzld/tasker-api/internal/store"
)

// NotificationService serves a recipient's own notifications. No role
// grants access to another user's notifications.
type NotificationService interface {
	ListNotifications(
		ctx context.Context,
		actor *domain.User,
		unreadOnly bool,
		page domain.Page,
	) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, actor *domain.User) (int, error)

	// MarkRead sets the read flag. Repeating it is not an error.
	MarkRead(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Notification, error)
	DeleteNotification(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

type notificationServiceImpl struct {
	tx            store.Transactor
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	tx store.Transactor,
	notifications store.NotificationStore,
	logger *slog.Logger,
) (NotificationService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationServiceImpl{
		tx:            tx,
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_service")),
	}, nil
}

// ListNotifications implements NotificationService.ListNotifications
func (s *notificationServiceImpl) ListNotifications(
	ctx context.Context,
	actor *domain.User,
	unreadOnly bool,
	page domain.Page,
) ([]*domain.Notification, error) {
	list, err := s.notifications.ListByUser(ctx, actor.ID, unreadOnly, page.Normalize())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", actor.ID.String()))
		return nil, NewServiceError("list_notifications", "failed to list notifications",
			translateStoreError(err, "notification"))
	}
	return list, nil
}

// UnreadCount implements NotificationService.UnreadCount
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, actor *domain.User) (int, error) {
	count, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, NewServiceError("unread_count", "failed to count notifications",
			translateStoreError(err, "notification"))
	}
	return count, nil
}

// MarkRead implements NotificationService.MarkRead
func (s *notificationServiceImpl) MarkRead(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
) (*domain.Notification, error) {
	var n *domain.Notification
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		notifications := s.notifications.WithTx(tx)

		var err error
		n, err = notifications.GetByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "notification")
		}
		if err := policy.RequireNotificationAccess(actor, n); err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		if err := notifications.MarkRead(ctx, id); err != nil {
			return translateStoreError(err, "notification")
		}
		n.IsRead = true
		return nil
	})
	if err != nil {
		return nil, NewServiceError("mark_read", "failed to mark notification read", err)
	}
	return n, nil
}

// DeleteNotification implements NotificationService.DeleteNotification
func (s *notificationServiceImpl) DeleteNotification(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		notifications := s.notifications.WithTx(tx)

		n, err := notifications.GetByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "notification")
		}
		if err := policy.RequireNotificationAccess(actor, n); err != nil {
			return err
		}
		return translateStoreError(notifications.Delete(ctx, id), "notification")
	})
	if err != nil {
		return NewServiceError("delete_notification", "failed to delete notification", err)
	}
	return nil
}
