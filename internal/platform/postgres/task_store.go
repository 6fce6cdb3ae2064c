package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     sqlx.ExtContext
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db sqlx.ExtContext, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
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

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		task.Deadline,
		task.Completed,
		task.AssignedUser,
		task.AssignedUserName,
		task.DateCreated,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var row taskRow
	query := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		return nil, mapNotFound(err, store.ErrTaskNotFound)
	}
	return row.toDomain(), nil
}

// Find implements store.TaskStore.Find
func (s *PostgresTaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if filter.MatchesNothing() {
		return []*domain.Task{}, nil
	}

	where := taskWhere(filter)
	query, args, err := bind(s.db, `SELECT `+taskColumns+` FROM tasks`+where.String()+` ORDER BY date_created, id`, where.args...)
	if err != nil {
		return nil, err
	}

	var rows []taskRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find tasks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	patch store.TaskPatch,
) (*domain.Task, error) {
	set, err := taskSet(patch)
	if err != nil {
		return nil, err
	}
	if set.empty() {
		return s.GetByID(ctx, id)
	}

	query := s.db.Rebind(`UPDATE tasks SET ` + set.String() + ` WHERE id = ? RETURNING ` + taskColumns)
	args := append(set.args, id)

	var row taskRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, args...); err != nil {
		return nil, mapNotFound(err, store.ErrTaskNotFound)
	}
	return row.toDomain(), nil
}

// UpdateMany implements store.TaskStore.UpdateMany
func (s *PostgresTaskStore) UpdateMany(
	ctx context.Context,
	filter store.TaskFilter,
	patch store.TaskPatch,
) (int, error) {
	if filter.MatchesNothing() {
		return 0, nil
	}
	set, err := taskSet(patch)
	if err != nil {
		return 0, err
	}
	if set.empty() {
		tasks, err := s.Find(ctx, filter)
		return len(tasks), err
	}

	where := taskWhere(filter)
	query, args, err := bind(s.db, `UPDATE tasks SET `+set.String()+where.String(),
		append(set.args, where.args...)...)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update tasks",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var row taskRow
	query := s.db.Rebind(`DELETE FROM tasks WHERE id = ? RETURNING ` + taskColumns)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		return nil, mapNotFound(err, store.ErrTaskNotFound)
	}
	return row.toDomain(), nil
}

func taskWhere(filter store.TaskFilter) *whereClause {
	w := &whereClause{}
	if filter.IDs != nil {
		w.add("id IN (?)", filter.IDs)
	}
	if filter.AssignedTo != nil {
		w.add("assigned_user = ?", *filter.AssignedTo)
	}
	return w
}

func taskSet(p store.TaskPatch) (*setClause, error) {
	s := &setClause{}
	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyTaskName)
		}
		s.add("name", *p.Name)
	}
	if p.Description != nil {
		s.add("description", *p.Description)
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyTaskDeadline)
		}
		s.add("deadline", p.Deadline.UTC())
	}
	if p.Completed != nil {
		s.add("completed", *p.Completed)
	}
	if p.Assignment != nil {
		if err := p.Assignment.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		s.add("assigned_user", p.Assignment.User)
		s.add("assigned_user_name", p.Assignment.UserName)
	}
	return s, nil
}
