package proton

import (
	"maps"
	"path/filepath"
	"slices"
)

// Canonicalize resolves every path to its real filesystem identity,
// collapses duplicates, and returns the set sorted lexicographically.
// The sorted order keeps reruns and logs reproducible regardless of
// discovery order.
//
// Paths that cannot be resolved (typically locations a manifest declares
// but that do not exist) keep their cleaned absolute form instead of
// being dropped.
func Canonicalize(candidates []string) []string {
	set := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			abs = filepath.Clean(candidate)
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			resolved = abs
		}
		set[resolved] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
