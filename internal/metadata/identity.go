package metadata

import (
	"regexp"
	"strings"
)

// Identity is what could be recovered about a submission's owner.
// Unresolvable fields carry the fallback values.
type Identity struct {
	Assignment string
	StudentID  string
}

// FallbackAssignment is used when no naming convention matched.
const FallbackAssignment = "unknown"

// IdentityResolver recovers student and assignment ids from the
// originating repository name. Naming conventions are fragile, so the
// resolver is pluggable; tests substitute deterministic ones.
type IdentityResolver interface {
	Resolve(repo string) Identity
}

// repoPattern matches "{assignment}-stu[_-]{student}", with an optional
// "owner/" prefix.
var repoPattern = regexp.MustCompile(`(?i)([a-z0-9]+)-stu[_-]([a-z0-9_-]+)$`)

// PatternResolver implements the repository naming convention used by
// course templates, e.g. "course-test/hw1-stu_sit001".
type PatternResolver struct{}

func (PatternResolver) Resolve(repo string) Identity {
	name := repo
	if i := strings.LastIndex(repo, "/"); i >= 0 {
		name = repo[i+1:]
	}
	m := repoPattern.FindStringSubmatch(name)
	if m == nil {
		return Identity{Assignment: FallbackAssignment}
	}
	return Identity{Assignment: strings.ToLower(m[1]), StudentID: m[2]}
}

// StaticResolver always returns the same identity. Used when an
// explicit override is configured and by tests.
type StaticResolver struct {
	Identity Identity
}

func (s StaticResolver) Resolve(string) Identity { return s.Identity }
