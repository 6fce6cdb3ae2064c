package assignment

import "github.com/phrazzld/tasktrack/internal/domain"

// AssignedUserName is the cached owner name a task should carry for owner.
// A nil owner yields domain.UnassignedName.
func AssignedUserName(owner *domain.User) string {
	if owner == nil {
		return domain.UnassignedName
	}
	return owner.Name
}

// AssignmentTo builds the owner fields a task should carry for owner.
// Every write of a task's owner fields goes through here.
func AssignmentTo(owner *domain.User) domain.Assignment {
	if owner == nil {
		return domain.Unassigned()
	}
	return domain.AssignedTo(owner.ID, AssignedUserName(owner))
}
