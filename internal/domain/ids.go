package domain

import "github.com/google/uuid"

// UniqueIDs returns ids with duplicates removed, keeping first occurrences in
// order. It never returns nil.
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SubtractIDs returns the members of a that are not in b, in a's order.
func SubtractIDs(a, b []uuid.UUID) []uuid.UUID {
	drop := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		drop[id] = struct{}{}
	}

	out := make([]uuid.UUID, 0, len(a))
	for _, id := range a {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// RemoveID returns ids without any occurrence of id.
func RemoveID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
