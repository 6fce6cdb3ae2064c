package assignment

import (
	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
)

// DetectConflicts returns, in input order, the tasks that are assigned to a
// user other than owner. Unassigned tasks and tasks owner already holds never
// conflict. An empty result means owner may claim every task.
func DetectConflicts(owner uuid.UUID, tasks []*domain.Task) []Conflict {
	var conflicts []Conflict
	for _, t := range tasks {
		if !t.AssignedUser.Valid || t.AssignedUser.UUID == owner {
			continue
		}
		conflicts = append(conflicts, Conflict{
			TaskID:       t.ID,
			CurrentOwner: t.AssignedUser.UUID,
		})
	}
	return conflicts
}
