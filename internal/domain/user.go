package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID   = errors.New("user ID cannot be empty")
	ErrEmptyUserName = errors.New("user name cannot be empty")
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrInvalidEmail  = errors.New("invalid email format")
)

// User is a person that tasks can be assigned to.
//
// PendingTasks is a set of task IDs; order carries no meaning. It mirrors the
// tasks whose AssignedUser is this user.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PendingTasks []uuid.UUID `json:"pendingTasks"`
	DateCreated  time.Time   `json:"dateCreated"`
}

// NewUser creates a new User with the given name, email and initial pending
// task set. Duplicate task IDs are collapsed. Returns an error if validation fails.
func NewUser(name, email string, pendingTasks []uuid.UUID) (*User, error) {
	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PendingTasks: UniqueIDs(pendingTasks),
		DateCreated:  time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyUserName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	return nil
}

// HasPendingTask reports whether taskID is in the user's pending set.
func (u *User) HasPendingTask(taskID uuid.UUID) bool {
	for _, id := range u.PendingTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

// Clone returns a copy of the user that shares no memory with u.
func (u *User) Clone() *User {
	c := *u
	c.PendingTasks = append([]uuid.UUID(nil), u.PendingTasks...)
	if c.PendingTasks == nil {
		c.PendingTasks = []uuid.UUID{}
	}
	return &c
}

// validateEmailFormat performs a shallow shape check: a non-empty local part,
// an "@", and a domain containing an inner dot.
func validateEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domainPart := email[at+1:]
	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
