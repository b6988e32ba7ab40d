package util

import "sort"

// SortedKeys returns a map's keys in sorted order, for deterministic iteration
// (e.g. emitting DDL statements in a stable order regardless of Go's
// randomized map iteration).
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
