package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
)

// TaskPatch lists the fields of a task document to overwrite. Nil fields are
// left untouched. Assignment overwrites both denormalized owner fields at once.
type TaskPatch struct {
	Name        *string
	Description *string
	Deadline    *time.Time
	Completed   *bool
	Assignment  *domain.Assignment
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Deadline == nil &&
		p.Completed == nil && p.Assignment == nil
}

// Apply writes the patch onto t.
func (p TaskPatch) Apply(t *domain.Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline.UTC()
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Assignment != nil {
		t.SetAssignment(*p.Assignment)
	}
}

// TaskStore defines the interface for task document persistence.
type TaskStore interface {
	// Create saves a new task document.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Find returns every task matching the filter, in no particular order.
	// Returns an empty slice, never nil, when nothing matches.
	Find(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update applies the patch to one task and returns the updated document.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error)

	// UpdateMany applies the patch to every task matching the filter and
	// returns the number of documents matched.
	UpdateMany(ctx context.Context, filter TaskFilter, patch TaskPatch) (int, error)

	// Delete removes a task and returns the document as it was before deletion.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}
