package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/redact"
	"github.com/urfave/cli/v3"
)

// Runner holds the dependencies of every command and provides their actions.
type Runner struct {
	output    io.Writer
	errOutput io.Writer

	cfg    *config.Config
	logger *slog.Logger
	app    *application
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Output    io.Writer
	ErrOutput io.Writer
	// App replaces the store connection built from configuration.
	App *application
}

// NewRunner creates a new Runner with the provided options.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = io.Discard
	}
	return &Runner{
		output:    opts.Output,
		errOutput: opts.ErrOutput,
		app:       opts.App,
	}
}

// renameNote is shown in help wherever a user rename can touch tasks.
const renameNote = "Renaming a user rewrites the cached owner name on the tasks they own.\n" +
	"A plain update would leave those names stale until the task is next reassigned.\n" +
	"Set engine.cascade_user_rename to false (TRACKER_ENGINE_CASCADE_USER_RENAME=false)\n" +
	"to keep the plain behaviour."

// Command builds the root command.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:        "tracker",
		Usage:       "Manage tasks, users and their assignments",
		Description: renameNote,
		Writer:      r.output,
		ErrWriter:   r.errOutput,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (yaml, toml or json)",
				Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Override log format (json, text)",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			taskCommand(r),
			userCommand(r),
			migrateCommand(r),
			reconcileCommand(r),
		},
	}
}

// setup loads configuration, builds the logger and tags the context with an
// operation id shared by every log line of this invocation.
func (r *Runner) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("failed to load configuration: %w", err)
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := cmd.String("log-format"); format != "" {
		cfg.Log.Format = format
	}
	if err := config.Validate(cfg); err != nil {
		return ctx, err
	}

	log, err := logger.New(cfg.Log, r.errOutput)
	if err != nil {
		return ctx, fmt.Errorf("failed to set up logger: %w", err)
	}

	r.cfg = cfg
	r.logger = log

	ctx = logger.WithLogger(ctx, log)
	ctx = logger.WithOperationID(ctx, uuid.NewString())

	logger.FromContext(ctx).Debug("configuration loaded",
		slog.String("driver", cfg.Database.Driver),
		slog.String("database_url", redact.URL(cfg.Database.URL)),
		slog.Bool("cascade_user_rename", cfg.Engine.CascadeUserRename))
	return ctx, nil
}

// application returns the store-backed services, connecting on first use.
func (r *Runner) application(ctx context.Context) (*application, error) {
	if r.app != nil {
		return r.app, nil
	}
	app, err := openApplication(ctx, r.cfg, r.logger)
	if err != nil {
		return nil, err
	}
	r.app = app
	return app, nil
}

// withTimeout bounds one engine operation by the configured timeout.
func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg == nil || r.cfg.Engine.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.Engine.OperationTimeout)
}

// Close releases the store connection, if one was opened.
func (r *Runner) Close() {
	if r.app == nil {
		return
	}
	if err := r.app.Close(); err != nil && r.logger != nil {
		r.logger.Warn("failed to close store connection", slog.String("error", redact.Error(err)))
	}
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
