package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

var errSeedNotConfigured = errors.New("seed.owner_email and seed.owner_password must be set")

// rootOptions carries flags shared by every subcommand.
type rootOptions struct {
	configDir string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tasker-api",
		Short:         "Task management API with comments and due date notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".",
		"directory searched for config.yaml; TASKER_* environment variables take precedence")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newHashPasswordCommand(),
	)
	return root
}

// bootstrap loads configuration and builds the process logger.
func bootstrap(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(opts.configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := setupAppDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down|reset|status|version>",
		Short: "Manage the database schema",
		ValidArgs: []string{
			postgres.MigrateUp,
			postgres.MigrateDown,
			postgres.MigrateReset,
			postgres.MigrateStatus,
			postgres.MigrateVersion,
		},
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer closeDatabase(db, log)

			return postgres.Migrate(cmd.Context(), db.DB, args[0], log)
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial owner account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}
			if cfg.Seed.OwnerEmail == "" || cfg.Seed.OwnerPassword == "" {
				return errSeedNotConfigured
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer closeDatabase(db, log)

			app, err := newApplication(cfg, log, db)
			if err != nil {
				return err
			}
			return app.seedOwner(cmd.Context())
		},
	}
}

// seedOwner creates the configured owner account once.
func (app *application) seedOwner(ctx context.Context) error {
	user, created, err := app.userService.EnsureOwner(ctx, app.config.Seed.OwnerEmail, app.config.Seed.OwnerPassword)
	if err != nil {
		return fmt.Errorf("failed to seed owner: %w", err)
	}
	if created {
		app.logger.Info("initial owner created", slog.String("user_id", user.ID.String()))
	} else {
		app.logger.Info("initial owner already present", slog.String("user_id", user.ID.String()))
	}
	return nil
}
