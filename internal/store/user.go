package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
)

// UserPatch lists the fields of a user document to overwrite. Nil fields are
// left untouched; PendingTasks replaces the whole set.
type UserPatch struct {
	Name         *string
	Email        *string
	PendingTasks *[]uuid.UUID
}

// Apply writes the patch onto u.
func (p UserPatch) Apply(u *domain.User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PendingTasks != nil {
		u.PendingTasks = domain.UniqueIDs(*p.PendingTasks)
	}
}

// UserStore defines the interface for user document persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Find returns every user matching the filter, in no particular order.
	Find(ctx context.Context, filter UserFilter) ([]*domain.User, error)

	// Update applies the patch to one user and returns the updated document.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*domain.User, error)

	// Delete removes a user and returns the document as it was before deletion.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
