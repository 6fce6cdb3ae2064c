package assignment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDetectConflicts(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	task := func(a domain.Assignment) *domain.Task {
		tk := &domain.Task{ID: uuid.New(), Name: "t"}
		tk.SetAssignment(a)
		return tk
	}

	free := task(domain.Unassigned())
	mine := task(domain.AssignedTo(me, "Me"))
	theirs := task(domain.AssignedTo(other, "Other"))
	alsoTheirs := task(domain.AssignedTo(other, "Other"))

	tests := []struct {
		name  string
		tasks []*domain.Task
		want  []Conflict
	}{
		{name: "no tasks", tasks: nil, want: nil},
		{name: "unassigned and own tasks", tasks: []*domain.Task{free, mine}, want: nil},
		{
			name:  "other owner in input order",
			tasks: []*domain.Task{alsoTheirs, free, theirs},
			want: []Conflict{
				{TaskID: alsoTheirs.ID, CurrentOwner: other},
				{TaskID: theirs.ID, CurrentOwner: other},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectConflicts(me, tc.tasks))
		})
	}
}

func TestAssignmentTo(t *testing.T) {
	u := &domain.User{ID: uuid.New(), Name: "Alice"}

	assert.Equal(t, domain.AssignedTo(u.ID, "Alice"), AssignmentTo(u))
	assert.Equal(t, domain.Unassigned(), AssignmentTo(nil))
	assert.Equal(t, domain.UnassignedName, AssignedUserName(nil))
}

func TestErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := newError(OpDeleteUser, "delete user", ErrStoreFailure, cause)

	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "delete_user failed: delete user")

	conflict := &ConflictError{UserID: uuid.New(), Conflicts: []Conflict{{TaskID: uuid.New(), CurrentOwner: uuid.New()}}}
	wrapped := newError(OpUpdateUser, "conflict", ErrAssignmentConflict, conflict)
	assert.ErrorIs(t, conflict, ErrAssignmentConflict)
	assert.Len(t, Conflicts(wrapped), 1)
	assert.Nil(t, Conflicts(err))
}
