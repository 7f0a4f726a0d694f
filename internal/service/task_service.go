package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/policy"
	"github.com/phrazzld/tasker-api/internal/store"
)

// TaskService provides task use cases on behalf of an authenticated actor.
type TaskService interface {
	// CreateTask creates a task owned by actor.
	CreateTask(ctx context.Context, actor *domain.User, input domain.NewTaskInput) (*domain.Task, error)

	// GetTask returns a task the actor may read.
	GetTask(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns a page of tasks. Members only ever see their own
	// tasks; onlyMine narrows an owner's listing the same way.
	ListTasks(ctx context.Context, actor *domain.User, onlyMine bool, page domain.Page) ([]*domain.Task, error)

	// UpdateTask applies a partial update.
	UpdateTask(ctx context.Context, actor *domain.User, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task together with its comments and notifications.
	DeleteTask(ctx context.Context, actor *domain.User, id uuid.UUID) error

	// ReassignOwner moves a task to another active user. Owner role only.
	ReassignOwner(ctx context.Context, actor *domain.User, id, newOwnerID uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tx      store.Transactor
	tasks   store.TaskStore
	users   store.UserStore
	clock   domain.Clock
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewTaskService creates a TaskService. A nil clock uses the system clock,
// a nil emitter drops events.
func NewTaskService(
	tx store.Transactor,
	tasks store.TaskStore,
	users store.UserStore,
	clock domain.Clock,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if clock == nil {
		clock = domain.SystemClock
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tx:      tx,
		tasks:   tasks,
		users:   users,
		clock:   clock,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actor *domain.User,
	input domain.NewTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.IsActive {
		return nil, NewServiceError("create_task", "inactive users cannot create tasks",
			domain.NewValidationError("owner", "user is inactive", domain.ErrInactiveUser))
	}

	task, err := domain.NewTask(input, actor.ID, s.clock.Today())
	if err != nil {
		log.Debug("rejected task input", slog.String("error", err.Error()))
		return nil, NewServiceError("create_task", "invalid task", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("owner_id", actor.ID.String()))
		return nil, NewServiceError("create_task", "failed to save task", translateStoreError(err, "task"))
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", actor.ID.String()))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to retrieve task", translateStoreError(err, "task"))
	}
	if err := policy.RequireTaskRead(actor, task); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task read denied",
			slog.String("task_id", id.String()),
			slog.String("actor_id", actor.ID.String()))
		return nil, NewServiceError("get_task", "access denied", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	actor *domain.User,
	onlyMine bool,
	page domain.Page,
) ([]*domain.Task, error) {
	var filter store.TaskFilter
	if onlyMine || !actor.IsOwner() {
		filter.OwnerID = &actor.ID
	}

	tasks, err := s.tasks.List(ctx, filter, page.Normalize())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("actor_id", actor.ID.String()))
		return nil, NewServiceError("list_tasks", "failed to list tasks", translateStoreError(err, "task"))
	}
	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	var updated *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "task")
		}
		if err := policy.RequireTaskWrite(actor, task); err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = task
			return nil
		}
		if err := patch.Apply(task, s.clock.Today()); err != nil {
			return err
		}
		if err := tasks.Update(ctx, task); err != nil {
			return translateStoreError(err, "task")
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_task", "failed to update task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		slog.String("task_id", id.String()),
		slog.Bool("changed", !patch.IsEmpty()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "task")
		}
		if err := policy.RequireTaskWrite(actor, task); err != nil {
			return err
		}
		return translateStoreError(tasks.Delete(ctx, id), "task")
	})
	if err != nil {
		return NewServiceError("delete_task", "failed to delete task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return nil
}

// ReassignOwner implements TaskService.ReassignOwner
func (s *taskServiceImpl) ReassignOwner(
	ctx context.Context,
	actor *domain.User,
	id, newOwnerID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The role gate runs before any lookup so members learn nothing about the task.
	if err := policy.RequireTaskReassign(actor); err != nil {
		return nil, NewServiceError("reassign_owner", "access denied", err)
	}

	var (
		task          *domain.Task
		previousOwner uuid.UUID
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		var err error
		task, err = tasks.GetByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "task")
		}

		owner, err := s.users.WithTx(tx).GetByID(ctx, newOwnerID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return domain.NewValidationError("owner_id", "new owner does not exist", domain.ErrInvalidID)
			}
			return translateStoreError(err, "user")
		}
		if !owner.IsActive {
			return domain.NewValidationError("owner_id", "new owner is inactive", domain.ErrInactiveUser)
		}

		previousOwner = task.OwnerID
		task.OwnerID = owner.ID
		task.UpdatedAt = time.Now().UTC()
		return translateStoreError(tasks.Update(ctx, task), "task")
	})
	if err != nil {
		log.Debug("task reassignment failed",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("reassign_owner", "failed to reassign task", err)
	}

	log.Info("task reassigned",
		slog.String("task_id", id.String()),
		slog.String("previous_owner_id", previousOwner.String()),
		slog.String("new_owner_id", newOwnerID.String()))

	emit(ctx, s.emitter, log, events.TypeTaskReassigned, actor.ID, events.TaskReassigned{
		TaskID:        task.ID,
		PreviousOwner: previousOwner,
		NewOwner:      newOwnerID,
	})
	return task, nil
}

// emit publishes an event after a committed change. Delivery failures are
// logged; the use case has already succeeded.
func emit(
	ctx context.Context,
	emitter events.EventEmitter,
	log *slog.Logger,
	eventType string,
	actorID uuid.UUID,
	payload any,
) {
	event, err := events.NewEvent(eventType, actorID, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event delivery failed",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
