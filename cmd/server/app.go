package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	userStore         store.UserStore
	taskStore         store.TaskStore
	commentStore      store.CommentStore
	notificationStore store.NotificationStore

	jwtService auth.JWTService
	hasher     auth.PasswordHasher

	userService         service.UserService
	taskService         service.TaskService
	commentService      service.CommentService
	notificationService service.NotificationService
	generator           service.NotificationGenerator

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication wires stores, services and the event emitter over db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.hasher = auth.NewBcryptHasher(cfg.Auth)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.commentStore = postgres.NewPostgresCommentStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)
	transactor := store.NewSQLTransactor(db)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))

	if app.userService, err = service.NewUserService(transactor, app.userStore, app.hasher, logger); err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	if app.taskService, err = service.NewTaskService(
		transactor,
		app.taskStore,
		app.userStore,
		domain.SystemClock,
		app.eventEmitter,
		logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	if app.commentService, err = service.NewCommentService(
		transactor,
		app.taskStore,
		app.commentStore,
		logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}
	if app.notificationService, err = service.NewNotificationService(
		transactor,
		app.notificationStore,
		logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}
	if app.generator, err = service.NewNotificationGenerator(
		transactor,
		app.taskStore,
		app.notificationStore,
		domain.SystemClock,
		app.eventEmitter,
		logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create notification generator: %w", err)
	}

	logger.Info("application initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
	app.logger.Info("application shutdown completed")
}
