package assignment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
)

// CreateTask implements Service.CreateTask
//
// Writes, in order: the task, then the owner's pending list.
func (s *serviceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("op", OpCreateTask))

	task, err := domain.NewTask(params.Name, params.Description, params.Deadline, params.Completed)
	if err != nil {
		return nil, invalid(OpCreateTask, err)
	}

	var owner *domain.User
	if params.AssignedUser.Valid {
		owner, err = s.users.GetByID(ctx, params.AssignedUser.UUID)
		if err != nil {
			if store.IsNotFoundError(err) {
				log.Debug("assigned user does not exist",
					slog.String("user_id", params.AssignedUser.UUID.String()))
				return nil, newError(OpCreateTask, "assigned user not found", ErrReferenceNotFound, err)
			}
			return nil, storeFailure(log, OpCreateTask, "load assigned user", err,
				slog.String("user_id", params.AssignedUser.UUID.String()))
		}
	}
	task.SetAssignment(AssignmentTo(owner))

	if err := s.tasks.Create(ctx, task); err != nil {
		if isValidationError(err) {
			return nil, invalid(OpCreateTask, err)
		}
		return nil, storeFailure(log, OpCreateTask, "save task", err)
	}
	log = log.With(slog.String("task_id", task.ID.String()))

	if owner != nil {
		if err := s.claimTask(ctx, owner, task.ID); err != nil {
			return nil, storeFailure(log, OpCreateTask, "add task to owner", err,
				slog.String("user_id", owner.ID.String()))
		}
	}

	log.Info("task created", slog.Bool("assigned", owner != nil))
	return task, nil
}

// UpdateTask implements Service.UpdateTask
//
// Reads the task and the desired owner first. Writes, in order: the previous
// owner's pending list, the new owner's pending list, then the task.
func (s *serviceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("op", OpUpdateTask),
		slog.String("task_id", id.String()),
	)

	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, newError(OpUpdateTask, "task not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpUpdateTask, "load task", err)
	}

	patch := store.TaskPatch{
		Name:        &params.Name,
		Deadline:    &params.Deadline,
		Description: params.Description,
		Completed:   params.Completed,
	}

	// The owner fields are only rewritten when the owner changes.
	reassign := params.AssignedUser != current.AssignedUser
	var newOwner *domain.User
	if reassign && params.AssignedUser.Valid {
		newOwner, err = s.users.GetByID(ctx, params.AssignedUser.UUID)
		switch {
		case err == nil:
		case store.IsNotFoundError(err):
			log.Warn("desired owner does not exist, task will be unassigned",
				slog.String("user_id", params.AssignedUser.UUID.String()))
			newOwner = nil
		default:
			return nil, storeFailure(log, OpUpdateTask, "load new owner", err,
				slog.String("user_id", params.AssignedUser.UUID.String()))
		}
	}
	if reassign {
		assignment := AssignmentTo(newOwner)
		patch.Assignment = &assignment
	}

	candidate := current.Clone()
	patch.Apply(candidate)
	if err := candidate.Validate(); err != nil {
		return nil, invalid(OpUpdateTask, err)
	}

	if reassign && current.AssignedUser.Valid {
		if err := s.releaseTask(ctx, current.AssignedUser.UUID, id); err != nil {
			return nil, storeFailure(log, OpUpdateTask, "remove task from previous owner", err,
				slog.String("user_id", current.AssignedUser.UUID.String()))
		}
	}
	if newOwner != nil {
		if err := s.claimTask(ctx, newOwner, id); err != nil {
			return nil, storeFailure(log, OpUpdateTask, "add task to new owner", err,
				slog.String("user_id", newOwner.ID.String()))
		}
	}

	updated, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Deleted after it was read; the owner lists were already adjusted.
			log.Warn("task disappeared during update")
			return nil, newError(OpUpdateTask, "task not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpUpdateTask, "save task", err)
	}

	log.Info("task updated",
		slog.Bool("reassigned", reassign),
		slog.String("assigned_user_name", updated.AssignedUserName))
	return updated, nil
}

// DeleteTask implements Service.DeleteTask
//
// Writes, in order: the task deletion, then the pending list of every user
// still listing the task. That includes a previous owner whose task was
// claimed by CreateUser without being released.
func (s *serviceImpl) DeleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("op", OpDeleteTask),
		slog.String("task_id", id.String()),
	)

	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, newError(OpDeleteTask, "task not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpDeleteTask, "delete task", err)
	}

	listing, err := s.users.Find(ctx, store.UsersWithPendingTask(id))
	if err != nil {
		return nil, storeFailure(log, OpDeleteTask, "find users listing task", err)
	}
	for _, u := range listing {
		pending := domain.RemoveID(u.PendingTasks, id)
		if _, err := s.users.Update(ctx, u.ID, store.UserPatch{PendingTasks: &pending}); err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, storeFailure(log, OpDeleteTask, "remove task from pending list", err,
				slog.String("user_id", u.ID.String()))
		}
	}

	log.Info("task deleted", slog.Int("released_from", len(listing)))
	return deleted, nil
}

// claimTask adds taskID to owner's pending list, starting from the snapshot
// read earlier in the operation.
func (s *serviceImpl) claimTask(ctx context.Context, owner *domain.User, taskID uuid.UUID) error {
	if owner.HasPendingTask(taskID) {
		return nil
	}
	pending := append(append([]uuid.UUID{}, owner.PendingTasks...), taskID)
	_, err := s.users.Update(ctx, owner.ID, store.UserPatch{PendingTasks: &pending})
	return err
}

// releaseTask removes taskID from the pending list of userID. A user that no
// longer exists has nothing to release.
func (s *serviceImpl) releaseTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	owner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("previous owner no longer exists",
				slog.String("user_id", userID.String()),
				slog.String("task_id", taskID.String()))
			return nil
		}
		return err
	}
	if !owner.HasPendingTask(taskID) {
		return nil
	}

	pending := domain.RemoveID(owner.PendingTasks, taskID)
	_, err = s.users.Update(ctx, userID, store.UserPatch{PendingTasks: &pending})
	if store.IsNotFoundError(err) {
		return nil
	}
	return err
}
