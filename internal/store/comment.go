package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// CommentStore defines the interface for comment data persistence.
type CommentStore interface {
	// Create saves a new comment.
	// Returns ErrInvalidEntity if the task or author does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by its unique ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListByTask returns a task's comments oldest first, with AuthorEmail populated.
	ListByTask(ctx context.Context, taskID uuid.UUID, page domain.Page) ([]*domain.Comment, error)

	// Update saves new content and updated_at for an existing comment.
	// Returns ErrCommentNotFound if the comment does not exist.
	Update(ctx context.Context, comment *domain.Comment) error

	// Delete removes a comment.
	// Returns ErrCommentNotFound if the comment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CommentStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) CommentStore
}
