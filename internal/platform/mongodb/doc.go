// Package mongodb implements the internal/store interfaces on MongoDB.
//
// Tasks and users live in the "tasks" and "users" collections with string
// UUID _id values. An unassigned task has no assignedUser field. Email
// uniqueness is enforced by a unique index created in EnsureIndexes.
package mongodb
