// Package assignment keeps the two sides of the task/user assignment in
// agreement: Task.AssignedUser with its cached AssignedUserName on one side,
// User.PendingTasks on the other.
//
// The store offers no transactions, so every operation is an ordered list of
// single-document reads and writes. All reads and checks happen before the
// first write. When a write fails, the operation stops and reports
// ErrStoreFailure; writes that already happened stay in place and the
// Reconciler can repair what they left behind.
package assignment
