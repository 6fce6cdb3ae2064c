package store

import "github.com/google/uuid"

// TaskFilter selects task documents. Set criteria are combined with AND.
//
// A nil IDs slice places no constraint on IDs, while a non-nil empty slice
// matches nothing. The zero TaskFilter matches every task.
type TaskFilter struct {
	IDs        []uuid.UUID
	AssignedTo *uuid.UUID
}

// TasksByID returns a filter matching the given task IDs only.
func TasksByID(ids ...uuid.UUID) TaskFilter {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return TaskFilter{IDs: ids}
}

// TasksAssignedTo returns a filter matching tasks owned by userID.
func TasksAssignedTo(userID uuid.UUID) TaskFilter {
	return TaskFilter{AssignedTo: &userID}
}

// MatchesNothing reports whether the filter can be answered without a query.
func (f TaskFilter) MatchesNothing() bool {
	return f.IDs != nil && len(f.IDs) == 0
}

// UserFilter selects user documents, with the same nil/empty rule for IDs as TaskFilter.
type UserFilter struct {
	IDs []uuid.UUID
	// PendingTask, when set, keeps only users whose pending list contains it.
	PendingTask *uuid.UUID
}

// UsersWithPendingTask returns a filter matching users that list taskID as pending.
func UsersWithPendingTask(taskID uuid.UUID) UserFilter {
	return UserFilter{PendingTask: &taskID}
}

// MatchesNothing reports whether the filter can be answered without a query.
func (f UserFilter) MatchesNothing() bool {
	return f.IDs != nil && len(f.IDs) == 0
}
