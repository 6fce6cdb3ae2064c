package assignment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
)

// OpReconcile names reconciliation runs in errors and logs.
const OpReconcile = "reconcile"

// TaskRepair describes a change to a task's owner fields.
type TaskRepair struct {
	TaskID uuid.UUID         `json:"taskId"`
	Reason string            `json:"reason"`
	Want   domain.Assignment `json:"want"`
}

// UserRepair describes a change to a user's pending set.
type UserRepair struct {
	UserID  uuid.UUID   `json:"userId"`
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
}

// Repair reasons.
const (
	ReasonOrphaned       = "owner does not exist"
	ReasonStaleName      = "cached owner name is stale"
	ReasonUnassignedName = "unassigned task carries an owner name"
)

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	DryRun       bool         `json:"dryRun"`
	TasksScanned int          `json:"tasksScanned"`
	UsersScanned int          `json:"usersScanned"`
	Tasks        []TaskRepair `json:"tasks"`
	Users        []UserRepair `json:"users"`
}

// Changes returns the number of documents the run changed, or would change.
func (r *ReconcileReport) Changes() int {
	return len(r.Tasks) + len(r.Users)
}

// Reconciler repairs drift left behind by interrupted operations and
// concurrent writers. The task side is authoritative: each user's pending
// set is rebuilt from the tasks that name the user, and tasks naming a
// missing user are unassigned.
type Reconciler struct {
	tasks  store.TaskStore
	users  store.UserStore
	logger *slog.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(tasks store.TaskStore, users store.UserStore, logger *slog.Logger) (*Reconciler, error) {
	if tasks == nil {
		return nil, fmt.Errorf("%w: task store cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, fmt.Errorf("%w: user store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		tasks:  tasks,
		users:  users,
		logger: logger.With(slog.String("component", "reconciler")),
	}, nil
}

// Run scans every task and user and repairs what disagrees. With dryRun set
// it only reports. Writes go through the same stores as the service, so a
// run racing with live mutations may itself need a second run.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	log := logger.FromContextOrDefault(ctx, r.logger).With(slog.Bool("dry_run", dryRun))

	tasks, err := r.tasks.Find(ctx, store.TaskFilter{})
	if err != nil {
		return nil, storeFailure(log, OpReconcile, "load tasks", err)
	}
	users, err := r.users.Find(ctx, store.UserFilter{})
	if err != nil {
		return nil, storeFailure(log, OpReconcile, "load users", err)
	}

	report := Plan(tasks, users)
	report.DryRun = dryRun
	log.Info("reconciliation planned",
		slog.Int("tasks_scanned", report.TasksScanned),
		slog.Int("users_scanned", report.UsersScanned),
		slog.Int("task_repairs", len(report.Tasks)),
		slog.Int("user_repairs", len(report.Users)))

	if dryRun {
		return report, nil
	}

	for _, repair := range report.Tasks {
		want := repair.Want
		if _, err := r.tasks.Update(ctx, repair.TaskID, store.TaskPatch{Assignment: &want}); err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, storeFailure(log, OpReconcile, "repair task", err,
				slog.String("task_id", repair.TaskID.String()))
		}
	}

	byID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, repair := range report.Users {
		pending := domain.SubtractIDs(byID[repair.UserID].PendingTasks, repair.Removed)
		pending = append(pending, repair.Added...)
		if _, err := r.users.Update(ctx, repair.UserID, store.UserPatch{PendingTasks: &pending}); err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, storeFailure(log, OpReconcile, "repair user", err,
				slog.String("user_id", repair.UserID.String()))
		}
	}

	log.Info("reconciliation applied", slog.Int("changes", report.Changes()))
	return report, nil
}

// Plan computes the repairs that bring tasks and users into agreement
// without touching any store.
func Plan(tasks []*domain.Task, users []*domain.User) *ReconcileReport {
	report := &ReconcileReport{
		TasksScanned: len(tasks),
		UsersScanned: len(users),
		Tasks:        []TaskRepair{},
		Users:        []UserRepair{},
	}

	byID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	owned := make(map[uuid.UUID][]uuid.UUID, len(users))
	for _, t := range tasks {
		if !t.AssignedUser.Valid {
			if t.AssignedUserName != domain.UnassignedName {
				report.Tasks = append(report.Tasks, TaskRepair{
					TaskID: t.ID, Reason: ReasonUnassignedName, Want: domain.Unassigned(),
				})
			}
			continue
		}

		owner, ok := byID[t.AssignedUser.UUID]
		if !ok {
			report.Tasks = append(report.Tasks, TaskRepair{
				TaskID: t.ID, Reason: ReasonOrphaned, Want: domain.Unassigned(),
			})
			continue
		}

		if t.AssignedUserName != AssignedUserName(owner) {
			report.Tasks = append(report.Tasks, TaskRepair{
				TaskID: t.ID, Reason: ReasonStaleName, Want: AssignmentTo(owner),
			})
		}
		owned[owner.ID] = append(owned[owner.ID], t.ID)
	}

	for _, u := range users {
		want := owned[u.ID]
		added := domain.SubtractIDs(want, u.PendingTasks)
		removed := domain.SubtractIDs(u.PendingTasks, want)
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		report.Users = append(report.Users, UserRepair{UserID: u.ID, Added: added, Removed: removed})
	}

	return report
}
