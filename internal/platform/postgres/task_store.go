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

var taskColumns = []string{
	"id", "title", "description", "status", "due_date", "owner_id", "created_at", "updated_at",
}

type taskRow struct {
	ID          uuid.UUID  `db:"id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Status      string     `db:"status"`
	DueDate     *time.Time `db:"due_date"`
	OwnerID     uuid.UUID  `db:"owner_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r taskRow) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DueDate != nil {
		d := domain.DateOf(*r.DueDate)
		t.DueDate = &d
	}
	return t
}

// dueDateArg converts an optional date into a driver value.
func dueDateArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return domain.DateOf(*d)
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sqlx.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query, args, err := psql.Insert("tasks").
		Columns(taskColumns...).
		Values(
			task.ID,
			task.Title,
			task.Description,
			string(task.Status),
			dueDateArg(task.DueDate),
			task.OwnerID,
			task.CreatedAt,
			task.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert task query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: owner %s not found", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select task query: %w", err)
	}

	var row taskRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return row.toDomain(), nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	page domain.Page,
) ([]*domain.Task, error) {
	q := psql.Select(taskColumns...).From("tasks").OrderBy("created_at ASC", "id ASC")
	if filter.OwnerID != nil {
		q = q.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	return s.selectTasks(ctx, paginate(q, page), "list")
}

// ListDueOpen implements store.TaskStore.ListDueOpen
func (s *PostgresTaskStore) ListDueOpen(ctx context.Context) ([]*domain.Task, error) {
	q := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.NotEq{"due_date": nil}).
		Where(squirrel.NotEq{"status": string(domain.TaskStatusDone)}).
		OrderBy("due_date ASC", "id ASC")
	return s.selectTasks(ctx, q, "list_due_open")
}

func (s *PostgresTaskStore) selectTasks(
	ctx context.Context,
	q squirrel.SelectBuilder,
	operation string,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", operation, err)
	}

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to select tasks",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, MapError(err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query, args, err := psql.Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", string(task.Status)).
		Set("due_date", dueDateArg(task.DueDate)).
		Set("owner_id", task.OwnerID).
		Set("updated_at", task.UpdatedAt).
		Where(squirrel.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update task query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Delete("tasks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete task query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task deleted", slog.String("task_id", id.String()))
	return nil
}
