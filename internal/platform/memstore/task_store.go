package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/store"
)

// TaskStore implements store.TaskStore over a Store.
type TaskStore struct {
	s *Store
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (ts *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if err := ts.s.injected(OpTaskCreate); err != nil {
		return err
	}
	if _, exists := ts.s.tasks[task.ID]; exists {
		return fmt.Errorf("%w: task %s", store.ErrDuplicate, task.ID)
	}

	ts.s.tasks[task.ID] = task.Clone()
	ts.s.writes++
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (ts *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if err := ts.s.injected(OpTaskGet); err != nil {
		return nil, err
	}

	task, ok := ts.s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Find implements store.TaskStore.Find
func (ts *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if err := ts.s.injected(OpTaskFind); err != nil {
		return nil, err
	}

	matched := ts.match(filter)
	out := make([]*domain.Task, 0, len(matched))
	for _, t := range matched {
		out = append(out, t.Clone())
	}
	sortTasks(out)
	return out, nil
}

// Update implements store.TaskStore.Update
func (ts *TaskStore) Update(ctx context.Context, id uuid.UUID, patch store.TaskPatch) (*domain.Task, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if err := ts.s.injected(OpTaskUpdate); err != nil {
		return nil, err
	}

	current, ok := ts.s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	updated := current.Clone()
	patch.Apply(updated)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	ts.s.tasks[id] = updated
	ts.s.writes++
	return updated.Clone(), nil
}

// UpdateMany implements store.TaskStore.UpdateMany
func (ts *TaskStore) UpdateMany(ctx context.Context, filter store.TaskFilter, patch store.TaskPatch) (int, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if err := ts.s.injected(OpTaskUpdateMany); err != nil {
		return 0, err
	}

	matched := ts.match(filter)
	for _, t := range matched {
		patch.Apply(t)
	}
	if len(matched) > 0 {
		ts.s.writes++
	}
	return len(matched), nil
}

// Delete implements store.TaskStore.Delete
func (ts *TaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if err := ts.s.injected(OpTaskDelete); err != nil {
		return nil, err
	}

	task, ok := ts.s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	delete(ts.s.tasks, id)
	ts.s.writes++
	return task, nil
}

// match returns the stored documents selected by filter. Callers must hold the lock.
func (ts *TaskStore) match(filter store.TaskFilter) []*domain.Task {
	if filter.MatchesNothing() {
		return nil
	}

	var ids map[uuid.UUID]struct{}
	if filter.IDs != nil {
		ids = idSet(filter.IDs)
	}

	var out []*domain.Task
	for id, t := range ts.s.tasks {
		if ids != nil {
			if _, ok := ids[id]; !ok {
				continue
			}
		}
		if filter.AssignedTo != nil && !t.Assignment().Owns(*filter.AssignedTo) {
			continue
		}
		out = append(out, t)
	}
	return out
}
