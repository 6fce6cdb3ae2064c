package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID            = errors.New("task ID cannot be empty")
	ErrEmptyTaskName          = errors.New("task name cannot be empty")
	ErrEmptyTaskDeadline      = errors.New("task deadline cannot be empty")
	ErrInconsistentAssignment = errors.New("assigned user and assigned user name disagree")
)

// Task is a unit of work that may be assigned to at most one User.
//
// AssignedUser and AssignedUserName are a denormalized copy of the owner:
// AssignedUserName mirrors the owner's name, or UnassignedName when
// AssignedUser is not valid.
type Task struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Deadline         time.Time     `json:"deadline"`
	Completed        bool          `json:"completed"`
	AssignedUser     uuid.NullUUID `json:"assignedUser"`
	AssignedUserName string        `json:"assignedUserName"`
	DateCreated      time.Time     `json:"dateCreated"`
}

// NewTask creates an unassigned Task with a fresh ID and creation timestamp.
// Returns an error if validation fails.
func NewTask(name, description string, deadline time.Time, completed bool) (*Task, error) {
	task := &Task{
		ID:               uuid.New(),
		Name:             name,
		Description:      description,
		Deadline:         deadline.UTC(),
		Completed:        completed,
		AssignedUserName: UnassignedName,
		DateCreated:      time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Name == "" {
		return ErrEmptyTaskName
	}

	if t.Deadline.IsZero() {
		return ErrEmptyTaskDeadline
	}

	return t.Assignment().Validate()
}

// Assignment returns the task's denormalized owner fields.
func (t *Task) Assignment() Assignment {
	return Assignment{User: t.AssignedUser, UserName: t.AssignedUserName}
}

// SetAssignment overwrites both owner fields.
func (t *Task) SetAssignment(a Assignment) {
	t.AssignedUser = a.User
	t.AssignedUserName = a.UserName
}

// Clone returns a copy of the task that shares no memory with t.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
