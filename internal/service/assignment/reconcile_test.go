package assignment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/memstore"
	"github.com/phrazzld/tasktrack/internal/service/assignment"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDrift writes documents straight into the store, bypassing the service.
func seedDrift(t *testing.T, mem *memstore.Store) (alice *domain.User, orphan, stale, unlisted *domain.Task) {
	t.Helper()
	ctx := context.Background()

	alice, err := domain.NewUser("Alice", "alice@x.com", nil)
	require.NoError(t, err)
	ghost := uuid.New()

	newTask := func(name string, a domain.Assignment) *domain.Task {
		task, err := domain.NewTask(name, "", deadline, false)
		require.NoError(t, err)
		task.SetAssignment(a)
		require.NoError(t, mem.Tasks().Create(ctx, task))
		return task
	}
	orphan = newTask("orphan", domain.AssignedTo(ghost, "Ghost"))
	stale = newTask("stale", domain.AssignedTo(alice.ID, "Alicia"))
	unlisted = newTask("unlisted", domain.AssignedTo(alice.ID, "Alice"))

	// Alice lists the stale task and a task that does not exist, but not the unlisted one.
	alice.PendingTasks = []uuid.UUID{stale.ID, ghost}
	require.NoError(t, mem.Users().Create(ctx, alice))
	return alice, orphan, stale, unlisted
}

func TestReconcilerDryRun(t *testing.T) {
	mem := memstore.New()
	alice, orphan, stale, unlisted := seedDrift(t, mem)
	r, err := assignment.NewReconciler(mem.Tasks(), mem.Users(), nil)
	require.NoError(t, err)

	before := mem.Writes()
	report, err := r.Run(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 3, report.TasksScanned)
	assert.Equal(t, 1, report.UsersScanned)
	assert.ElementsMatch(t, []assignment.TaskRepair{
		{TaskID: orphan.ID, Reason: assignment.ReasonOrphaned, Want: domain.Unassigned()},
		{TaskID: stale.ID, Reason: assignment.ReasonStaleName, Want: domain.AssignedTo(alice.ID, "Alice")},
	}, report.Tasks)
	require.Len(t, report.Users, 1)
	assert.Equal(t, alice.ID, report.Users[0].UserID)
	assert.Equal(t, []uuid.UUID{unlisted.ID}, report.Users[0].Added)
	assert.Len(t, report.Users[0].Removed, 1)
	assert.Equal(t, 3, report.Changes())
	assert.Equal(t, before, mem.Writes(), "dry run must not write")
}

func TestReconcilerRepairs(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	alice, orphan, stale, unlisted := seedDrift(t, mem)
	r, err := assignment.NewReconciler(mem.Tasks(), mem.Users(), nil)
	require.NoError(t, err)

	report, err := r.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Changes())

	got, err := mem.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{stale.ID, unlisted.ID}, got.PendingTasks)

	o, err := mem.Tasks().GetByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Unassigned(), o.Assignment())

	s, err := mem.Tasks().GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.AssignedUserName)

	again, err := r.Run(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, again.Changes(), "second run must find nothing")
}

func TestReconcilerStoreFailure(t *testing.T) {
	mem := memstore.New()
	seedDrift(t, mem)
	r, err := assignment.NewReconciler(mem.Tasks(), mem.Users(), nil)
	require.NoError(t, err)

	mem.FailNext(memstore.OpTaskFind, errors.New("timeout"))
	_, err = r.Run(context.Background(), false)
	assert.ErrorIs(t, err, assignment.ErrStoreFailure)
}

func TestNewReconcilerRequiresStores(t *testing.T) {
	_, err := assignment.NewReconciler(nil, memstore.New().Users(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var tasks store.TaskStore = memstore.New().Tasks()
	_, err = assignment.NewReconciler(tasks, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
