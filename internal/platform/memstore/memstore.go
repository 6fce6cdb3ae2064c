package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
)

// Operation names accepted by FailNext.
const (
	OpTaskCreate     = "tasks.create"
	OpTaskGet        = "tasks.get"
	OpTaskFind       = "tasks.find"
	OpTaskUpdate     = "tasks.update"
	OpTaskUpdateMany = "tasks.update_many"
	OpTaskDelete     = "tasks.delete"
	OpUserCreate     = "users.create"
	OpUserGet        = "users.get"
	OpUserFind       = "users.find"
	OpUserUpdate     = "users.update"
	OpUserDelete     = "users.delete"
)

// Store holds both collections behind one lock.
type Store struct {
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*domain.Task
	users    map[uuid.UUID]*domain.User
	failures map[string][]error
	writes   int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		tasks:    make(map[uuid.UUID]*domain.Task),
		users:    make(map[uuid.UUID]*domain.User),
		failures: make(map[string][]error),
	}
}

// Tasks returns the task collection.
func (s *Store) Tasks() *TaskStore {
	return &TaskStore{s: s}
}

// Users returns the user collection.
func (s *Store) Users() *UserStore {
	return &UserStore{s: s}
}

// FailNext makes the next call of op return err instead of running.
// Queued failures are consumed in order.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Writes returns the number of successful write calls made so far.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Snapshot returns copies of every document, for assertions in tests.
func (s *Store) Snapshot() ([]*domain.Task, []*domain.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t.Clone())
	}
	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	return tasks, users
}

// injected pops a queued failure for op. Callers must hold s.mu.
func (s *Store) injected(op string) error {
	queue := s.failures[op]
	if len(queue) == 0 {
		return nil
	}
	s.failures[op] = queue[1:]
	return queue[0]
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// sortTasks and sortUsers order results by creation time, then ID, the same
// order the database drivers return.
func sortTasks(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return createdBefore(tasks[i].DateCreated, tasks[j].DateCreated, tasks[i].ID, tasks[j].ID)
	})
}

func sortUsers(users []*domain.User) {
	sort.Slice(users, func(i, j int) bool {
		return createdBefore(users[i].DateCreated, users[j].DateCreated, users[i].ID, users[j].ID)
	})
}

func createdBefore(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID.String() < bID.String()
}
