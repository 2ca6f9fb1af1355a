// Package exclusion decides which request paths bypass authentication.
//
// Matching is exact string equality after trailing-slash normalization.
// Prefix and wildcard patterns are not supported: "/api/v1/status/" exempts
// "/api/v1/status" and "/api/v1/status/" but not "/api/v1/status/extra".
package exclusion

import "strings"

// Normalize appends a trailing slash to path when it is missing.
func Normalize(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// RequiresAuth reports whether path must be authenticated given the excluded
// list. An empty path or an empty list is always protected. Entries in
// excluded are compared as given, so they must already carry a trailing slash.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}

	normalized := Normalize(path)
	for _, p := range excluded {
		if p == normalized {
			return false
		}
	}

	return true
}

// Matcher is a precomputed exemption set. It is immutable after NewMatcher
// and safe for concurrent use.
type Matcher struct {
	paths map[string]struct{}
	list  []string
}

// NewMatcher normalizes every entry of paths and drops empty ones.
func NewMatcher(paths []string) *Matcher {
	m := &Matcher{
		paths: make(map[string]struct{}, len(paths)),
		list:  make([]string, 0, len(paths)),
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		n := Normalize(p)
		if _, dup := m.paths[n]; dup {
			continue
		}
		m.paths[n] = struct{}{}
		m.list = append(m.list, n)
	}
	return m
}

// RequiresAuth has the same contract as the package-level RequiresAuth.
func (m *Matcher) RequiresAuth(path string) bool {
	if m == nil || path == "" || len(m.paths) == 0 {
		return true
	}
	_, exempt := m.paths[Normalize(path)]
	return !exempt
}

// Paths returns a copy of the normalized exemption list in insertion order.
func (m *Matcher) Paths() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.list))
	copy(out, m.list)
	return out
}
