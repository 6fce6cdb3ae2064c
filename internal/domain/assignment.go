package domain

import "github.com/google/uuid"

// UnassignedName is the cached owner name of a task that has no owner.
const UnassignedName = "unassigned"

// Assignment is the pair of denormalized fields a Task keeps about its owner.
// The two fields are always written together.
type Assignment struct {
	User     uuid.NullUUID `json:"assignedUser"`
	UserName string        `json:"assignedUserName"`
}

// Unassigned returns the assignment of a task without an owner.
func Unassigned() Assignment {
	return Assignment{UserName: UnassignedName}
}

// AssignedTo returns an assignment to the given user ID with the given cached name.
func AssignedTo(userID uuid.UUID, name string) Assignment {
	return Assignment{
		User:     uuid.NullUUID{UUID: userID, Valid: true},
		UserName: name,
	}
}

// IsAssigned reports whether the assignment names an owner.
func (a Assignment) IsAssigned() bool {
	return a.User.Valid
}

// Owns reports whether the assignment belongs to userID.
func (a Assignment) Owns(userID uuid.UUID) bool {
	return a.User.Valid && a.User.UUID == userID
}

// Validate checks the shape of the assignment: an unassigned task must carry
// UnassignedName, an assigned task must carry a non-empty name and a non-nil ID.
func (a Assignment) Validate() error {
	if !a.User.Valid {
		if a.UserName != UnassignedName {
			return ErrInconsistentAssignment
		}
		return nil
	}

	if a.User.UUID == uuid.Nil || a.UserName == "" {
		return ErrInconsistentAssignment
	}

	return nil
}
