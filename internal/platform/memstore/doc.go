// Package memstore is an in-memory implementation of the store interfaces.
// It backs the memory driver and the service tests. Documents are copied on
// the way in and out, so callers never share memory with the store.
package memstore
