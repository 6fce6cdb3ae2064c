package assignment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
)

// CreateUser implements Service.CreateUser
//
// Writes, in order: the user, then one bulk write claiming the listed tasks.
func (s *serviceImpl) CreateUser(ctx context.Context, params CreateUserParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("op", OpCreateUser))

	user, err := domain.NewUser(params.Name, params.Email, params.PendingTasks)
	if err != nil {
		return nil, invalid(OpCreateUser, err)
	}

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return nil, newError(OpCreateUser, "email already in use", ErrDuplicateEmail, nil)
	} else if !store.IsNotFoundError(err) {
		return nil, storeFailure(log, OpCreateUser, "check email", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			return nil, newError(OpCreateUser, "email already in use", ErrDuplicateEmail, err)
		case isValidationError(err):
			return nil, invalid(OpCreateUser, err)
		default:
			return nil, storeFailure(log, OpCreateUser, "save user", err)
		}
	}
	log = log.With(slog.String("user_id", user.ID.String()))

	if len(user.PendingTasks) > 0 {
		assignment := AssignmentTo(user)
		matched, err := s.tasks.UpdateMany(ctx, store.TasksByID(user.PendingTasks...),
			store.TaskPatch{Assignment: &assignment})
		if err != nil {
			return nil, storeFailure(log, OpCreateUser, "claim pending tasks", err)
		}
		if matched != len(user.PendingTasks) {
			log.Warn("some pending tasks do not exist",
				slog.Int("requested", len(user.PendingTasks)),
				slog.Int("matched", matched))
		}
	}

	log.Info("user created", slog.Int("pending_tasks", len(user.PendingTasks)))
	return user, nil
}

// UpdateUser implements Service.UpdateUser
//
// Every read and check happens against the state loaded at the start.
// Writes, in order: release dropped tasks, claim added tasks, cascade a
// rename, then the user document.
func (s *serviceImpl) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	params UpdateUserParams,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("op", OpUpdateUser),
		slog.String("user_id", id.String()),
	)

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, newError(OpUpdateUser, "user not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpUpdateUser, "load user", err)
	}

	candidate := current.Clone()
	candidate.Name = params.Name
	candidate.Email = params.Email
	if err := candidate.Validate(); err != nil {
		return nil, invalid(OpUpdateUser, err)
	}

	if params.Email != current.Email {
		other, err := s.users.GetByEmail(ctx, params.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, newError(OpUpdateUser, "email already in use", ErrDuplicateEmail, nil)
		case err != nil && !store.IsNotFoundError(err):
			return nil, storeFailure(log, OpUpdateUser, "check email", err)
		}
	}

	patch := store.UserPatch{Name: &params.Name, Email: &params.Email}

	var release, claim []uuid.UUID
	if params.PendingTasks != nil {
		desired := domain.UniqueIDs(params.PendingTasks)

		requested, err := s.tasks.Find(ctx, store.TasksByID(desired...))
		if err != nil {
			return nil, storeFailure(log, OpUpdateUser, "load requested tasks", err)
		}

		if conflicts := DetectConflicts(id, requested); len(conflicts) > 0 {
			log.Info("update rejected, requested tasks belong to other users",
				slog.Int("conflicts", len(conflicts)))
			return nil, newError(OpUpdateUser, "requested tasks are assigned to other users",
				ErrAssignmentConflict, &ConflictError{UserID: id, Conflicts: conflicts})
		}

		found := make(map[uuid.UUID]*domain.Task, len(requested))
		for _, t := range requested {
			found[t.ID] = t
		}

		// Unknown IDs are dropped so the stored set only names real tasks.
		kept := make([]uuid.UUID, 0, len(desired))
		for _, taskID := range desired {
			t, ok := found[taskID]
			if !ok {
				log.Warn("requested task does not exist, dropping it",
					slog.String("task_id", taskID.String()))
				continue
			}
			kept = append(kept, taskID)
			if !t.Assignment().Owns(id) {
				claim = append(claim, taskID)
			}
		}

		release = domain.SubtractIDs(current.PendingTasks, kept)
		patch.PendingTasks = &kept
	}

	if len(release) > 0 {
		unassigned := domain.Unassigned()
		// Only tasks still owned by this user are released.
		filter := store.TaskFilter{IDs: release, AssignedTo: &id}
		n, err := s.tasks.UpdateMany(ctx, filter, store.TaskPatch{Assignment: &unassigned})
		if err != nil {
			return nil, storeFailure(log, OpUpdateUser, "release dropped tasks", err)
		}
		log.Debug("released dropped tasks", slog.Int("requested", len(release)), slog.Int("matched", n))
	}

	if len(claim) > 0 {
		assignment := domain.AssignedTo(id, params.Name)
		n, err := s.tasks.UpdateMany(ctx, store.TasksByID(claim...), store.TaskPatch{Assignment: &assignment})
		if err != nil {
			return nil, storeFailure(log, OpUpdateUser, "claim added tasks", err)
		}
		log.Debug("claimed added tasks", slog.Int("requested", len(claim)), slog.Int("matched", n))
	}

	if s.opts.CascadeUserRename && params.Name != current.Name {
		renamed := domain.AssignedTo(id, params.Name)
		n, err := s.tasks.UpdateMany(ctx, store.TasksAssignedTo(id), store.TaskPatch{Assignment: &renamed})
		if err != nil {
			return nil, storeFailure(log, OpUpdateUser, "rename owned tasks", err)
		}
		log.Debug("renamed owned tasks", slog.Int("matched", n))
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			log.Warn("email taken after task writes were applied")
			return nil, newError(OpUpdateUser, "email already in use", ErrDuplicateEmail, err)
		case store.IsNotFoundError(err):
			log.Warn("user disappeared during update")
			return nil, newError(OpUpdateUser, "user not found", ErrNotFound, err)
		default:
			return nil, storeFailure(log, OpUpdateUser, "save user", err)
		}
	}

	log.Info("user updated",
		slog.Int("released", len(release)),
		slog.Int("claimed", len(claim)),
		slog.Int("pending_tasks", len(updated.PendingTasks)))
	return updated, nil
}

// DeleteUser implements Service.DeleteUser
//
// Writes, in order: the user deletion, then one bulk write unassigning
// every task that named the user.
func (s *serviceImpl) DeleteUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("op", OpDeleteUser),
		slog.String("user_id", id.String()),
	)

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, newError(OpDeleteUser, "user not found", ErrNotFound, err)
		}
		return nil, storeFailure(log, OpDeleteUser, "delete user", err)
	}

	unassigned := domain.Unassigned()
	n, err := s.tasks.UpdateMany(ctx, store.TasksAssignedTo(id), store.TaskPatch{Assignment: &unassigned})
	if err != nil {
		return nil, storeFailure(log, OpDeleteUser, "unassign owned tasks", err)
	}

	log.Info("user deleted", slog.Int("unassigned_tasks", n))
	return deleted, nil
}
