package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/memstore"
	"github.com/phrazzld/tasktrack/internal/platform/mongodb"
	"github.com/phrazzld/tasktrack/internal/platform/postgres"
	"github.com/phrazzld/tasktrack/internal/redact"
	"github.com/phrazzld/tasktrack/internal/service/assignment"
	"github.com/phrazzld/tasktrack/internal/store"
)

const closeTimeout = 5 * time.Second

// errMigrateUnsupported is returned for schema commands a driver cannot run.
var errMigrateUnsupported = errors.New("migration command not supported by driver")

// migrateFunc runs one schema command and returns what should be printed.
type migrateFunc func(ctx context.Context, command string) (*migrationResult, error)

type migrationResult struct {
	Driver  string `json:"driver"`
	Command string `json:"command"`
	Version *int64 `json:"version,omitempty"`
}

// application is everything a command needs from the storage side.
type application struct {
	service    assignment.Service
	reconciler *assignment.Reconciler
	migrate    migrateFunc
	close      func() error
}

// Close releases the underlying connection.
func (a *application) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// newApplication builds the engine and reconciler over a pair of stores.
func newApplication(
	tasks store.TaskStore,
	users store.UserStore,
	logger *slog.Logger,
	cfg config.EngineConfig,
) (*application, error) {
	svc, err := assignment.NewService(tasks, users, logger, assignment.Options{
		CascadeUserRename: cfg.CascadeUserRename,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment service: %w", err)
	}
	rec, err := assignment.NewReconciler(tasks, users, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciler: %w", err)
	}
	return &application{service: svc, reconciler: rec}, nil
}

// newMemoryApplication wires the engine to an in-memory store.
func newMemoryApplication(mem *memstore.Store, logger *slog.Logger, cfg config.EngineConfig) (*application, error) {
	app, err := newApplication(mem.Tasks(), mem.Users(), logger, cfg)
	if err != nil {
		return nil, err
	}
	app.migrate = func(_ context.Context, command string) (*migrationResult, error) {
		return &migrationResult{Driver: config.DriverMemory, Command: command}, nil
	}
	return app, nil
}

// openApplication connects to the configured driver.
func openApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	log := logger.With(
		slog.String("driver", cfg.Database.Driver),
		slog.String("database_url", redact.URL(cfg.Database.URL)),
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Debug("using process-local memory store")
		return newMemoryApplication(memstore.New(), logger, cfg.Engine)
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			log.Error("failed to open database", slog.String("error", redact.Error(err)))
			return nil, err
		}
		log.Info("database connection established")
		return newPostgresApplication(db, logger, cfg.Engine)
	case config.DriverMongoDB:
		ms, err := mongodb.Open(ctx, cfg.Database, logger)
		if err != nil {
			log.Error("failed to open database", slog.String("error", redact.Error(err)))
			return nil, err
		}
		log.Info("database connection established", slog.String("database", cfg.Database.Name))
		return newMongoApplication(ms, logger, cfg.Engine)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func newPostgresApplication(db *sqlx.DB, logger *slog.Logger, cfg config.EngineConfig) (*application, error) {
	app, err := newApplication(
		postgres.NewPostgresTaskStore(db, logger),
		postgres.NewPostgresUserStore(db, logger),
		logger,
		cfg,
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.migrate = func(ctx context.Context, command string) (*migrationResult, error) {
		if err := postgres.Migrate(ctx, db.DB, command, logger); err != nil {
			return nil, err
		}
		version, err := postgres.SchemaVersion(ctx, db.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema version: %w", err)
		}
		return &migrationResult{Driver: config.DriverPostgres, Command: command, Version: &version}, nil
	}
	app.close = db.Close
	return app, nil
}

func newMongoApplication(ms *mongodb.Store, logger *slog.Logger, cfg config.EngineConfig) (*application, error) {
	closeStore := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		return ms.Close(ctx)
	}

	app, err := newApplication(ms.Tasks(), ms.Users(), logger, cfg)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	// MongoDB has no versioned schema; only the indexes are managed.
	app.migrate = func(ctx context.Context, command string) (*migrationResult, error) {
		switch command {
		case "up":
			if err := ms.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
		case "reset":
			if err := ms.Drop(ctx); err != nil {
				return nil, err
			}
			if err := ms.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %s on %s", errMigrateUnsupported, command, config.DriverMongoDB)
		}
		return &migrationResult{Driver: config.DriverMongoDB, Command: command}, nil
	}
	app.close = closeStore
	return app, nil
}
