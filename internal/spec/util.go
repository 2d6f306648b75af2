package spec

import "sort"

// sortedKeys returns map keys in sorted order so construction from Go maps
// stays deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
