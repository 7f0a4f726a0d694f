package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

var notificationColumns = []string{
	"id", "message", "notification_type", "user_id", "task_id", "is_read", "created_at",
}

type notificationRow struct {
	ID        uuid.UUID      `db:"id"`
	Message   string         `db:"message"`
	Type      string         `db:"notification_type"`
	UserID    uuid.UUID      `db:"user_id"`
	TaskID    uuid.UUID      `db:"task_id"`
	IsRead    bool           `db:"is_read"`
	CreatedAt time.Time      `db:"created_at"`
	TaskTitle sql.NullString `db:"task_title"`
}

func (r notificationRow) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        r.ID,
		Message:   r.Message,
		Type:      domain.NotificationType(r.Type),
		UserID:    r.UserID,
		TaskID:    r.TaskID,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
		TaskTitle: r.TaskTitle.String,
	}
}

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// WithTx implements store.NotificationStore.WithTx
func (s *PostgresNotificationStore) WithTx(tx *sqlx.Tx) store.NotificationStore {
	return &PostgresNotificationStore{db: tx, logger: s.logger}
}

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Insert("notifications").
		Columns(notificationColumns...).
		Values(n.ID, n.Message, string(n.Type), n.UserID, n.TaskID, n.IsRead, n.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert notification query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", n.ID.String()),
			slog.String("task_id", n.TaskID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.NotificationStore.GetByID
func (s *PostgresNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select notification query: %w", err)
	}

	var row notificationRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to get notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *PostgresNotificationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	page domain.Page,
) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q := psql.Select(
		"n.id", "n.message", "n.notification_type", "n.user_id", "n.task_id", "n.is_read", "n.created_at",
		"t.title AS task_title",
	).
		From("notifications n").
		LeftJoin("tasks t ON t.id = n.task_id").
		Where(squirrel.Eq{"n.user_id": userID}).
		OrderBy("n.created_at DESC", "n.id DESC")
	if unreadOnly {
		q = q.Where(squirrel.Eq{"n.is_read": false})
	}

	query, args, err := paginate(q, page).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	out := make([]*domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// CountUnread implements store.NotificationStore.CountUnread
func (s *PostgresNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count unread notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

// MarkRead implements store.NotificationStore.MarkRead
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}

// Delete implements store.NotificationStore.Delete
func (s *PostgresNotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("notifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete notification query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}

// ExistsUnread implements store.NotificationStore.ExistsUnread
func (s *PostgresNotificationStore) ExistsUnread(
	ctx context.Context,
	taskID, userID uuid.UUID,
	kind domain.NotificationType,
) (bool, error) {
	sub := psql.Select("1").
		From("notifications").
		Where(squirrel.Eq{
			"task_id":           taskID,
			"user_id":           userID,
			"notification_type": string(kind),
			"is_read":           false,
		})

	query, args, err := psql.Select().
		Column(squirrel.Expr("EXISTS (?)", sub)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check existing notification",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return false, MapError(err)
	}
	return exists, nil
}
