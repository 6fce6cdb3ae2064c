package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
)

// Operation names used in errors and logs.
const (
	OpCreateTask = "create_task"
	OpUpdateTask = "update_task"
	OpDeleteTask = "delete_task"
	OpGetTask    = "get_task"
	OpCreateUser = "create_user"
	OpUpdateUser = "update_user"
	OpDeleteUser = "delete_user"
	OpGetUser    = "get_user"
	OpListTasks  = "list_tasks"
	OpListUsers  = "list_users"
)

// Service performs task and user mutations while keeping both sides of
// every assignment consistent.
type Service interface {
	// CreateTask saves a new task, assigning it to params.AssignedUser if set.
	// Returns ErrReferenceNotFound if that user does not exist.
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)

	// GetTask returns a task by ID, or ErrNotFound.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateTask replaces a task's fields and moves it between owners as needed.
	// A desired owner that does not exist leaves the task unassigned.
	UpdateTask(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (*domain.Task, error)

	// ListTasks returns the tasks selected by filter, oldest first.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// DeleteTask removes a task and drops it from every pending list that
	// still names it. Returns the task as it was before deletion.
	DeleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// CreateUser saves a new user and claims every listed task for them.
	// Listed tasks are neither checked for existence nor for conflicts.
	CreateUser(ctx context.Context, params CreateUserParams) (*domain.User, error)

	// GetUser returns a user by ID, or ErrNotFound.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ListUsers returns the users selected by filter, oldest first.
	ListUsers(ctx context.Context, filter store.UserFilter) ([]*domain.User, error)

	// UpdateUser replaces a user's fields. When params.PendingTasks is set the
	// user's tasks are reconciled with it; a request that asks for another
	// user's task is rejected with ErrAssignmentConflict before any write.
	UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (*domain.User, error)

	// DeleteUser removes a user and unassigns every task they owned.
	// Returns the user as it was before deletion.
	DeleteUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Options tune the engine.
type Options struct {
	// CascadeUserRename rewrites the cached owner name of a user's tasks when
	// the user is renamed.
	CascadeUserRename bool
}

// serviceImpl implements the Service interface
type serviceImpl struct {
	tasks  store.TaskStore
	users  store.UserStore
	opts   Options
	logger *slog.Logger
}

// NewService creates a new Service.
// It returns an error if any of the required dependencies are nil.
func NewService(
	tasks store.TaskStore,
	users store.UserStore,
	logger *slog.Logger,
	opts Options,
) (Service, error) {
	if tasks == nil {
		return nil, fmt.Errorf("%w: task store cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, fmt.Errorf("%w: user store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		tasks:  tasks,
		users:  users,
		opts:   opts,
		logger: logger.With(slog.String("component", "assignment_service")),
	}, nil
}

// storeFailure logs a failed store call and wraps it as ErrStoreFailure.
// Earlier writes of the operation are left in place.
func storeFailure(log *slog.Logger, op, step string, err error, attrs ...any) error {
	attrs = append(attrs, slog.String("step", step), slog.String("error", err.Error()))
	log.Error("store call failed, operation aborted", attrs...)
	return newError(op, step, ErrStoreFailure, err)
}

// invalid wraps a domain validation failure of caller-supplied input.
func invalid(op string, err error) error {
	return newError(op, "invalid input", domain.ErrValidation, err)
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, store.ErrInvalidEntity)
}

// GetTask implements Service.GetTask
func (s *serviceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, newError(OpGetTask, "task not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpGetTask, "load task", err, slog.String("task_id", id.String()))
	}
	return task, nil
}

// GetUser implements Service.GetUser
func (s *serviceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, newError(OpGetUser, "user not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpGetUser, "load user", err, slog.String("user_id", id.String()))
	}
	return user, nil
}

// ListTasks implements Service.ListTasks
func (s *serviceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, storeFailure(logger.FromContextOrDefault(ctx, s.logger), OpListTasks, "find tasks", err)
	}
	return tasks, nil
}

// ListUsers implements Service.ListUsers
func (s *serviceImpl) ListUsers(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	users, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, storeFailure(logger.FromContextOrDefault(ctx, s.logger), OpListUsers, "find users", err)
	}
	return users, nil
}
