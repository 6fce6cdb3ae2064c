//go:build integration

package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/mongodb"
	"github.com/phrazzld/tasktrack/internal/service/assignment"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to a fresh database named after the test and drops
// it afterwards. Tests are skipped when TRACKER_TEST_MONGO_URL is unset.
func openTestStore(t *testing.T) *mongodb.Store {
	t.Helper()

	url := os.Getenv("TRACKER_TEST_MONGO_URL")
	if url == "" {
		t.Skip("TRACKER_TEST_MONGO_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := mongodb.Open(ctx, config.DatabaseConfig{
		Driver:          config.DriverMongoDB,
		URL:             url,
		Name:            "tracker_test_" + uuid.NewString()[:8],
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Minute,
	}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestMongoStores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tasks, users := s.Tasks(), s.Users()

	u, err := domain.NewUser("Alice", "alice@x.com", nil)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))

	clash, err := domain.NewUser("Other", "alice@x.com", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, clash), store.ErrEmailExists)

	task, err := domain.NewTask("T", "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)
	task.SetAssignment(domain.AssignedTo(u.ID, u.Name))
	require.NoError(t, tasks.Create(ctx, task))

	owned, err := tasks.Find(ctx, store.TasksAssignedTo(u.ID))
	require.NoError(t, err)
	require.Len(t, owned, 1)

	unassigned := domain.Unassigned()
	n, err := tasks.UpdateMany(ctx, store.TasksAssignedTo(u.ID), store.TaskPatch{Assignment: &unassigned})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Unassigned(), got.Assignment())

	pending := []uuid.UUID{task.ID}
	updated, err := users.Update(ctx, u.ID, store.UserPatch{PendingTasks: &pending})
	require.NoError(t, err)
	assert.Equal(t, pending, updated.PendingTasks)

	listing, err := users.Find(ctx, store.UsersWithPendingTask(task.ID))
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, u.ID, listing[0].ID)

	_, err = users.Delete(ctx, u.ID)
	require.NoError(t, err)
	_, err = users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestAssignmentServiceOnMongo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	svc, err := assignment.NewService(s.Tasks(), s.Users(), nil, assignment.Options{CascadeUserRename: true})
	require.NoError(t, err)

	bob, err := svc.CreateUser(ctx, assignment.CreateUserParams{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)
	carol, err := svc.CreateUser(ctx, assignment.CreateUserParams{Name: "Carol", Email: "carol@x.com"})
	require.NoError(t, err)

	t2, err := svc.CreateTask(ctx, assignment.CreateTaskParams{
		Name: "T2", Deadline: time.Now().Add(time.Hour), AssignedUser: uuid.NullUUID{UUID: carol.ID, Valid: true},
	})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, bob.ID, assignment.UpdateUserParams{
		Name: "Bob", Email: "bob@x.com", PendingTasks: []uuid.UUID{t2.ID},
	})
	assert.ErrorIs(t, err, assignment.ErrAssignmentConflict)

	r, err := assignment.NewReconciler(s.Tasks(), s.Users(), nil)
	require.NoError(t, err)
	report, err := r.Run(ctx, true)
	require.NoError(t, err)
	assert.Zero(t, report.Changes())
}
