// Package domain contains the core business entities of the tracker: tasks,
// users, and the single-owner assignment that links them. It is independent
// of any storage technology or delivery mechanism.
//
// The assignment is stored on both sides. A Task carries the owner's ID and a
// cached copy of the owner's name; a User carries the set of task IDs it owns.
// Keeping the two sides in agreement is the job of the assignment service,
// not of the entities themselves.
package domain
