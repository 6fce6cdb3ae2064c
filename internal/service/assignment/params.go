package assignment

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskParams are the validated inputs of CreateTask.
type CreateTaskParams struct {
	Name         string
	Description  string
	Deadline     time.Time
	Completed    bool
	AssignedUser uuid.NullUUID
}

// UpdateTaskParams replace a task's writable fields. AssignedUser is the
// desired owner; an invalid NullUUID means the task should be unassigned.
// Nil Description and Completed leave those fields as they are.
type UpdateTaskParams struct {
	Name         string
	Deadline     time.Time
	Description  *string
	Completed    *bool
	AssignedUser uuid.NullUUID
}

// CreateUserParams are the validated inputs of CreateUser.
type CreateUserParams struct {
	Name         string
	Email        string
	PendingTasks []uuid.UUID
}

// UpdateUserParams replace a user's fields. A nil PendingTasks leaves the
// user's tasks alone; a non-nil empty slice releases all of them.
type UpdateUserParams struct {
	Name         string
	Email        string
	PendingTasks []uuid.UUID
}
