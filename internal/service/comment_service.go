package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/policy"
	"github.com/phrazzld/tasker-api/internal/store"
)

// CommentService provides comment use cases. Comment visibility follows
// the visibility of the parent task.
type CommentService interface {
	ListComments(ctx context.Context, actor *domain.User, taskID uuid.UUID, page domain.Page) ([]*domain.Comment, error)
	CreateComment(ctx context.Context, actor *domain.User, taskID uuid.UUID, content string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, actor *domain.User, commentID uuid.UUID, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, actor *domain.User, commentID uuid.UUID) error
}

type commentServiceImpl struct {
	tx       store.Transactor
	tasks    store.TaskStore
	comments store.CommentStore
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	tx store.Transactor,
	tasks store.TaskStore,
	comments store.CommentStore,
	logger *slog.Logger,
) (CommentService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if comments == nil {
		return nil, domain.NewValidationError("comments", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &commentServiceImpl{
		tx:       tx,
		tasks:    tasks,
		comments: comments,
		logger:   logger.With(slog.String("component", "comment_service")),
	}, nil
}

// readableTask loads the task and checks the actor can see it.
func readableTask(ctx context.Context, tasks store.TaskStore, actor *domain.User, taskID uuid.UUID) error {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return translateStoreError(err, "task")
	}
	return policy.RequireTaskRead(actor, task)
}

// ListComments implements CommentService.ListComments
func (s *commentServiceImpl) ListComments(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	page domain.Page,
) ([]*domain.Comment, error) {
	if err := readableTask(ctx, s.tasks, actor, taskID); err != nil {
		return nil, NewServiceError("list_comments", "cannot access task", err)
	}

	comments, err := s.comments.ListByTask(ctx, taskID, page.Normalize())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewServiceError("list_comments", "failed to list comments", translateStoreError(err, "comment"))
	}
	return comments, nil
}

// CreateComment implements CommentService.CreateComment
func (s *commentServiceImpl) CreateComment(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	var comment *domain.Comment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		// Authorization is decided before the content is looked at.
		if err := readableTask(ctx, s.tasks.WithTx(tx), actor, taskID); err != nil {
			return err
		}

		var err error
		comment, err = domain.NewComment(taskID, actor.ID, content)
		if err != nil {
			return err
		}
		return translateStoreError(s.comments.WithTx(tx).Create(ctx, comment), "comment")
	})
	if err != nil {
		return nil, NewServiceError("create_comment", "failed to create comment", err)
	}

	comment.AuthorEmail = actor.Email
	logger.FromContextOrDefault(ctx, s.logger).Debug("comment created",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", taskID.String()))
	return comment, nil
}

// UpdateComment implements CommentService.UpdateComment
func (s *commentServiceImpl) UpdateComment(
	ctx context.Context,
	actor *domain.User,
	commentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	var comment *domain.Comment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		comments := s.comments.WithTx(tx)

		var err error
		comment, err = comments.GetByID(ctx, commentID)
		if err != nil {
			return translateStoreError(err, "comment")
		}
		if err := policy.RequireCommentModeration(actor, comment); err != nil {
			return err
		}

		normalized, err := domain.NormalizeCommentContent(content)
		if err != nil {
			return err
		}
		comment.Content = normalized
		comment.UpdatedAt = time.Now().UTC()
		return translateStoreError(comments.Update(ctx, comment), "comment")
	})
	if err != nil {
		return nil, NewServiceError("update_comment", "failed to update comment", err)
	}
	return comment, nil
}

// DeleteComment implements CommentService.DeleteComment
func (s *commentServiceImpl) DeleteComment(ctx context.Context, actor *domain.User, commentID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		comments := s.comments.WithTx(tx)

		comment, err := comments.GetByID(ctx, commentID)
		if err != nil {
			return translateStoreError(err, "comment")
		}
		if err := policy.RequireCommentModeration(actor, comment); err != nil {
			return err
		}
		return translateStoreError(comments.Delete(ctx, commentID), "comment")
	})
	if err != nil {
		return NewServiceError("delete_comment", "failed to delete comment", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("comment deleted",
		slog.String("comment_id", commentID.String()),
		slog.String("actor_id", actor.ID.String()))
	return nil
}
