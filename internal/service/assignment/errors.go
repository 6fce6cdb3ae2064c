package assignment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error kinds returned by the service. Match them with errors.Is.
var (
	// ErrNotFound indicates the task or user the operation targets does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReferenceNotFound indicates a user referenced by a new task does not exist.
	ErrReferenceNotFound = errors.New("referenced user not found")

	// ErrDuplicateEmail indicates another user already holds the email.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrAssignmentConflict indicates a requested task is owned by a different user.
	// The returned error also carries a *ConflictError with the details.
	ErrAssignmentConflict = errors.New("task already assigned to another user")

	// ErrStoreFailure indicates a store call failed for infrastructure reasons.
	ErrStoreFailure = errors.New("store failure")
)

// Error is the error type returned by every service operation.
type Error struct {
	Op      string // operation, e.g. "update_user"
	Message string // what the operation was doing
	Kind    error  // one of the Err* kinds above, or a domain validation error
	Err     error  // underlying cause, may be nil
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is/errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(op, message string, kind, err error) *Error {
	return &Error{Op: op, Message: message, Kind: kind, Err: err}
}

// Conflict names a task that a user asked for but another user owns.
type Conflict struct {
	TaskID       uuid.UUID `json:"taskId"`
	CurrentOwner uuid.UUID `json:"currentOwner"`
}

// ConflictError reports every conflicting task of a rejected update.
type ConflictError struct {
	UserID    uuid.UUID
	Conflicts []Conflict
}

// Error implements the error interface for ConflictError.
func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s (owned by %s)", c.TaskID, c.CurrentOwner))
	}
	return fmt.Sprintf("%d task(s) requested by user %s belong to another user: %s",
		len(e.Conflicts), e.UserID, strings.Join(parts, ", "))
}

// Is makes a ConflictError match ErrAssignmentConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrAssignmentConflict
}

// Conflicts returns the conflicts carried by err, or nil.
func Conflicts(err error) []Conflict {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Conflicts
	}
	return nil
}
