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

var commentColumns = []string{"id", "content", "task_id", "author_id", "created_at", "updated_at"}

type commentRow struct {
	ID          uuid.UUID      `db:"id"`
	Content     string         `db:"content"`
	TaskID      uuid.UUID      `db:"task_id"`
	AuthorID    uuid.UUID      `db:"author_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	AuthorEmail sql.NullString `db:"author_email"`
}

func (r commentRow) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:          r.ID,
		Content:     r.Content,
		TaskID:      r.TaskID,
		AuthorID:    r.AuthorID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		AuthorEmail: r.AuthorEmail.String,
	}
}

// PostgresCommentStore implements the store.CommentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a new PostgreSQL implementation of the CommentStore interface.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

var _ store.CommentStore = (*PostgresCommentStore)(nil)

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sqlx.Tx) store.CommentStore {
	return &PostgresCommentStore{db: tx, logger: s.logger}
}

// Create implements store.CommentStore.Create
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Insert("comments").
		Columns(commentColumns...).
		Values(
			comment.ID,
			comment.Content,
			comment.TaskID,
			comment.AuthorID,
			comment.CreatedAt,
			comment.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert comment query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during comment creation",
				slog.String("comment_id", comment.ID.String()),
				slog.String("task_id", comment.TaskID.String()))
			return fmt.Errorf("%w: task or author not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return MapError(err)
	}

	log.Debug("comment created",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", comment.TaskID.String()))
	return nil
}

// GetByID implements store.CommentStore.GetByID
func (s *PostgresCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select comment query: %w", err)
	}

	var row commentRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCommentNotFound
		}
		log.Error("failed to get comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", id.String()))
		return nil, MapError(err)
	}

	return row.toDomain(), nil
}

// ListByTask implements store.CommentStore.ListByTask
func (s *PostgresCommentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
	page domain.Page,
) ([]*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q := psql.Select(
		"c.id", "c.content", "c.task_id", "c.author_id", "c.created_at", "c.updated_at",
		"u.email AS author_email",
	).
		From("comments c").
		LeftJoin("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.task_id": taskID}).
		OrderBy("c.created_at ASC", "c.id ASC")

	query, args, err := paginate(q, page).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	var rows []commentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	comments := make([]*domain.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.toDomain())
	}
	return comments, nil
}

// Update implements store.CommentStore.Update
func (s *PostgresCommentStore) Update(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Update("comments").
		Set("content", comment.Content).
		Set("updated_at", comment.UpdatedAt).
		Where(squirrel.Eq{"id": comment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update comment query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCommentNotFound)
}

// Delete implements store.CommentStore.Delete
func (s *PostgresCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Delete("comments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete comment query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCommentNotFound)
}
