package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/store"
)

// UserStore implements store.UserStore over a Store.
type UserStore struct {
	s *Store
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (us *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if err := us.s.injected(OpUserCreate); err != nil {
		return err
	}
	if _, exists := us.s.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s", store.ErrDuplicate, user.ID)
	}
	if us.emailTaken(user.Email, user.ID) {
		return store.ErrEmailExists
	}

	us.s.users[user.ID] = user.Clone()
	us.s.writes++
	return nil
}

// GetByID implements store.UserStore.GetByID
func (us *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if err := us.s.injected(OpUserGet); err != nil {
		return nil, err
	}

	user, ok := us.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user.Clone(), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (us *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if err := us.s.injected(OpUserGet); err != nil {
		return nil, err
	}

	for _, user := range us.s.users {
		if user.Email == email {
			return user.Clone(), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Find implements store.UserStore.Find
func (us *UserStore) Find(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if err := us.s.injected(OpUserFind); err != nil {
		return nil, err
	}
	if filter.MatchesNothing() {
		return []*domain.User{}, nil
	}

	var ids map[uuid.UUID]struct{}
	if filter.IDs != nil {
		ids = idSet(filter.IDs)
	}

	out := make([]*domain.User, 0)
	for id, user := range us.s.users {
		if ids != nil {
			if _, ok := ids[id]; !ok {
				continue
			}
		}
		if filter.PendingTask != nil && !user.HasPendingTask(*filter.PendingTask) {
			continue
		}
		out = append(out, user.Clone())
	}
	sortUsers(out)
	return out, nil
}

// Update implements store.UserStore.Update
func (us *UserStore) Update(ctx context.Context, id uuid.UUID, patch store.UserPatch) (*domain.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if err := us.s.injected(OpUserUpdate); err != nil {
		return nil, err
	}

	current, ok := us.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	updated := current.Clone()
	patch.Apply(updated)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if us.emailTaken(updated.Email, id) {
		return nil, store.ErrEmailExists
	}

	us.s.users[id] = updated
	us.s.writes++
	return updated.Clone(), nil
}

// Delete implements store.UserStore.Delete
func (us *UserStore) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if err := us.s.injected(OpUserDelete); err != nil {
		return nil, err
	}

	user, ok := us.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	delete(us.s.users, id)
	us.s.writes++
	return user, nil
}

// emailTaken reports whether a user other than self holds email. Callers must hold the lock.
func (us *UserStore) emailTaken(email string, self uuid.UUID) bool {
	for id, user := range us.s.users {
		if id != self && user.Email == email {
			return true
		}
	}
	return false
}
