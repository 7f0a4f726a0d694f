package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// TaskFilter narrows a task listing. A nil OwnerID lists every task.
type TaskFilter struct {
	OwnerID *uuid.UUID
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks matching filter ordered by created_at then id,
	// with the page window applied after ordering.
	List(ctx context.Context, filter TaskFilter, page domain.Page) ([]*domain.Task, error)

	// Update overwrites all mutable fields of an existing task, including owner_id.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and, by cascade, its comments and notifications.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDueOpen returns every task with a due date whose status is not done,
	// ordered by due date then id.
	ListDueOpen(ctx context.Context) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) TaskStore
}
