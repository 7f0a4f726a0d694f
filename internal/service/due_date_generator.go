package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/policy"
	"github.com/phrazzld/tasker-api/internal/store"
)

// GenerationSummary reports what one sweep created. Created always holds
// a key for every notification type.
type GenerationSummary struct {
	Created map[domain.NotificationType]int `json:"created"`
	Total   int                             `json:"total"`
	Failed  int                             `json:"failed"`
}

func newGenerationSummary() *GenerationSummary {
	created := make(map[domain.NotificationType]int, len(domain.NotificationTypes))
	for _, t := range domain.NotificationTypes {
		created[t] = 0
	}
	return &GenerationSummary{Created: created}
}

// NotificationGenerator sweeps open tasks with due dates and notifies their
// owners about overdue, due today and due soon work.
type NotificationGenerator interface {
	Run(ctx context.Context, actor *domain.User) (*GenerationSummary, error)
}

type dueDateGenerator struct {
	tx            store.Transactor
	tasks         store.TaskStore
	notifications store.NotificationStore
	clock         domain.Clock
	emitter       events.EventEmitter
	logger        *slog.Logger
}

// NewNotificationGenerator creates the due date sweep.
func NewNotificationGenerator(
	tx store.Transactor,
	tasks store.TaskStore,
	notifications store.NotificationStore,
	clock domain.Clock,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (NotificationGenerator, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
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
	return &dueDateGenerator{
		tx:            tx,
		tasks:         tasks,
		notifications: notifications,
		clock:         clock,
		emitter:       emitter,
		logger:        logger.With(slog.String("component", "notification_generator")),
	}, nil
}

// Run implements NotificationGenerator.Run. Each task is handled in its own
// transaction; a failing task is logged and counted, and the sweep moves on.
// Notifications whose condition no longer holds are left in place.
func (g *dueDateGenerator) Run(ctx context.Context, actor *domain.User) (*GenerationSummary, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if err := policy.RequireOwnerRole(actor); err != nil {
		return nil, NewServiceError("generate_notifications", "access denied", err)
	}

	tasks, err := g.tasks.ListDueOpen(ctx)
	if err != nil {
		log.Error("failed to load tasks with due dates", slog.String("error", err.Error()))
		return nil, NewServiceError("generate_notifications", "failed to load tasks",
			translateStoreError(err, "task"))
	}

	today := g.clock.Today()
	summary := newGenerationSummary()

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			log.Warn("notification sweep interrupted",
				slog.Int("created", summary.Total),
				slog.String("error", err.Error()))
			return summary, NewServiceError("generate_notifications", "sweep interrupted", err)
		}

		if task.DueDate == nil {
			continue
		}
		kind, ok := domain.ClassifyDueDate(*task.DueDate, today)
		if !ok {
			continue
		}

		created, err := g.notifyOwner(ctx, task, kind)
		if err != nil {
			summary.Failed++
			log.Error("failed to generate notification",
				slog.String("task_id", task.ID.String()),
				slog.String("notification_type", string(kind)),
				slog.String("error", err.Error()))
			continue
		}
		if created {
			summary.Created[kind]++
			summary.Total++
		}
	}

	log.Info("notification sweep finished",
		slog.Int("scanned", len(tasks)),
		slog.Int("created", summary.Total),
		slog.Int("failed", summary.Failed))

	emit(ctx, g.emitter, log, events.TypeNotificationsGenerated, actor.ID, events.NotificationsGenerated{
		Created: createdByName(summary.Created),
		Total:   summary.Total,
		Failed:  summary.Failed,
	})
	return summary, nil
}

// notifyOwner inserts a notification unless an unread one of the same kind
// already exists for the task and its owner. The check and the insert are
// not atomic across concurrent sweeps.
func (g *dueDateGenerator) notifyOwner(
	ctx context.Context,
	task *domain.Task,
	kind domain.NotificationType,
) (bool, error) {
	created := false
	err := g.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		notifications := g.notifications.WithTx(tx)

		exists, err := notifications.ExistsUnread(ctx, task.ID, task.OwnerID, kind)
		if err != nil {
			return fmt.Errorf("checking for existing notification: %w", err)
		}
		if exists {
			return nil
		}

		n, err := domain.NewDueDateNotification(task, kind)
		if err != nil {
			return err
		}
		if err := notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("saving notification: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

func createdByName(created map[domain.NotificationType]int) map[string]int {
	out := make(map[string]int, len(created))
	for k, v := range created {
		out[string(k)] = v
	}
	return out
}
