package collector

import (
	"path"
	"strings"
)

// Filter selects operations by include/exclude patterns (path.Match
// syntax).
type Filter struct {
	Include []string
	Exclude []string
}

// Allows reports whether the operation in dir with the given id passes the
// filter.
func (f Filter) Allows(id, dir string) bool {
	// If Include is set, must match at least one
	if len(f.Include) > 0 && !matchesAnyPattern(f.Include, id, dir) {
		return false
	}
	// If Exclude is set, must not match any
	if len(f.Exclude) > 0 && matchesAnyPattern(f.Exclude, id, dir) {
		return false
	}
	return true
}

func matchesAnyPattern(patterns []string, id, dir string) bool {
	for _, p := range patterns {
		if matchPattern(p, id, dir) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, id, dir string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	// A pattern with a '/' matches the operation folder; otherwise it matches
	// the operation id so patterns like "2021-*" work regardless of layout.
	if strings.Contains(pattern, "/") {
		matched, _ := path.Match(pattern, dir)
		return matched
	}
	matched, _ := path.Match(pattern, id)
	return matched
}
