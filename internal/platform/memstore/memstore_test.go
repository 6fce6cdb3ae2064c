package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/memstore"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, name string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(name, "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)
	return task
}

func mustUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email, nil)
	require.NoError(t, err)
	return user
}

func TestTaskStoreCRUD(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.New().Tasks()

	task := mustTask(t, "Write spec")
	require.NoError(t, tasks.Create(ctx, task))

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	got.Name = "mutated"
	again, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write spec", again.Name, "returned documents must be copies")

	name := "Write better spec"
	updated, err := tasks.Update(ctx, task.ID, store.TaskPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	deleted, err := tasks.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, name, deleted.Name)

	_, err = tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = tasks.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = tasks.Update(ctx, task.ID, store.TaskPatch{Name: &name})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreRejectsInvalidAssignment(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.New().Tasks()

	task := mustTask(t, "Write spec")
	require.NoError(t, tasks.Create(ctx, task))

	broken := domain.Assignment{UserName: "Alice"}
	_, err := tasks.Update(ctx, task.ID, store.TaskPatch{Assignment: &broken})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestTaskStoreFindAndUpdateMany(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.New().Tasks()

	owner := uuid.New()
	a, b, c := mustTask(t, "a"), mustTask(t, "b"), mustTask(t, "c")
	a.SetAssignment(domain.AssignedTo(owner, "Alice"))
	b.SetAssignment(domain.AssignedTo(owner, "Alice"))
	for _, task := range []*domain.Task{a, b, c} {
		require.NoError(t, tasks.Create(ctx, task))
	}

	all, err := tasks.Find(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := tasks.Find(ctx, store.TasksByID())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	owned, err := tasks.Find(ctx, store.TasksAssignedTo(owner))
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	filter := store.TaskFilter{IDs: []uuid.UUID{a.ID, c.ID}, AssignedTo: &owner}
	both, err := tasks.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, a.ID, both[0].ID)

	unassigned := domain.Unassigned()
	n, err := tasks.UpdateMany(ctx, store.TasksAssignedTo(owner), store.TaskPatch{Assignment: &unassigned})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	owned, err = tasks.Find(ctx, store.TasksAssignedTo(owner))
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestUserStoreEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Users()

	alice := mustUser(t, "Alice", "alice@x.com")
	require.NoError(t, users.Create(ctx, alice))

	imposter := mustUser(t, "Imposter", "alice@x.com")
	assert.ErrorIs(t, users.Create(ctx, imposter), store.ErrEmailExists)

	bob := mustUser(t, "Bob", "bob@x.com")
	require.NoError(t, users.Create(ctx, bob))

	taken := "alice@x.com"
	_, err := users.Update(ctx, bob.ID, store.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, store.ErrEmailExists)

	same := "alice@x.com"
	_, err = users.Update(ctx, alice.ID, store.UserPatch{Email: &same})
	assert.NoError(t, err, "keeping one's own email is not a duplicate")

	found, err := users.GetByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, found.ID)

	_, err = users.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStoreFindAndDelete(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Users()

	alice := mustUser(t, "Alice", "alice@x.com")
	bob := mustUser(t, "Bob", "bob@x.com")
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	all, err := users.Find(ctx, store.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := users.Find(ctx, store.UserFilter{IDs: []uuid.UUID{bob.ID}})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Bob", some[0].Name)

	deleted, err := users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, deleted.ID)

	_, err = users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestFailNextAndWrites(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	boom := errors.New("boom")

	s.FailNext(memstore.OpTaskCreate, boom)

	task := mustTask(t, "Write spec")
	assert.ErrorIs(t, s.Tasks().Create(ctx, task), boom)
	assert.Equal(t, 0, s.Writes())

	require.NoError(t, s.Tasks().Create(ctx, task), "failure is consumed after one call")
	assert.Equal(t, 1, s.Writes())

	tasks, users := s.Snapshot()
	assert.Len(t, tasks, 1)
	assert.Empty(t, users)
}

func TestInvalidEntityKeepsDomainCause(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	task := mustTask(t, "Write spec")
	require.NoError(t, s.Tasks().Create(ctx, task))

	empty := ""
	_, err := s.Tasks().Update(ctx, task.ID, store.TaskPatch{Name: &empty})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskName)

	nameless := mustTask(t, "x")
	nameless.Name = ""
	err = s.Tasks().Create(ctx, nameless)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskName)

	user := mustUser(t, "Alice", "alice@x.com")
	require.NoError(t, s.Users().Create(ctx, user))

	bad := "not-an-email"
	_, err = s.Users().Update(ctx, user.ID, store.UserPatch{Email: &bad})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	anonymous := mustUser(t, "Bob", "bob@x.com")
	anonymous.Name = ""
	err = s.Users().Create(ctx, anonymous)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyUserName)
}

func TestUserStoreFindByPendingTask(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Users()

	taskID := uuid.New()
	alice, err := domain.NewUser("Alice", "alice@x.com", []uuid.UUID{taskID})
	require.NoError(t, err)
	bob, err := domain.NewUser("Bob", "bob@x.com", []uuid.UUID{taskID, uuid.New()})
	require.NoError(t, err)
	carol := mustUser(t, "Carol", "carol@x.com")
	for _, u := range []*domain.User{alice, bob, carol} {
		require.NoError(t, users.Create(ctx, u))
	}

	listing, err := users.Find(ctx, store.UsersWithPendingTask(taskID))
	require.NoError(t, err)
	var names []string
	for _, u := range listing {
		names = append(names, u.Name)
	}
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, names)

	filter := store.UsersWithPendingTask(taskID)
	filter.IDs = []uuid.UUID{bob.ID, carol.ID}
	narrowed, err := users.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, bob.ID, narrowed[0].ID)

	none, err := users.Find(ctx, store.UsersWithPendingTask(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.New().Tasks()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var want []uuid.UUID
	for i := 0; i < 5; i++ {
		task := mustTask(t, "t")
		task.DateCreated = base.Add(time.Duration(i) * time.Minute)
		want = append(want, task.ID)
		require.NoError(t, tasks.Create(ctx, task))
	}

	got, err := tasks.Find(ctx, store.TaskFilter{})
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, want, ids)
}
