// Package store defines the document store contract the assignment service
// persists through. It has two collections, tasks and users, keyed by UUID.
//
// Every method is a single, independent call. A write touches exactly one
// document, except UpdateMany which applies the same patch to each matching
// task document one by one; there is no transaction spanning documents or
// collections, and callers must not assume one.
package store
