// Package toolpolicy implements the glob-aware tool allow/deny matcher
// used to decide whether a sub-agent may invoke a given tool.
//
// Matching is case-sensitive. An entry containing '*' or '?' is matched
// as a glob pattern; any other entry is matched as a literal. Deny always
// wins over allow: a tool denied by any deny entry is never enabled, even
// if it also matches an allow entry. An absent (nil) allow list means
// "allow everything except what deny excludes".
package toolpolicy

import (
	"path/filepath"
	"strings"
)

// IsEnabled reports whether toolName may be invoked given the allow and
// deny lists. allow == nil means "no allow restriction" (everything not
// denied is allowed); an empty, non-nil allow slice behaves the same way
// after Normalize collapses it to nil — callers should pass the result of
// Normalize, not a raw possibly-empty slice, when they want that
// semantics distinction to matter.
func IsEnabled(toolName string, allow, deny []string) bool {
	if matchesAny(toolName, deny) {
		return false
	}
	if allow == nil {
		return true
	}
	return matchesAny(toolName, allow)
}

// Normalize trims whitespace from each entry, drops empty entries and
// repeated entries (keeping the first occurrence), and returns nil if
// nothing remains. Order of first occurrence is preserved, which keeps
// display output (list_agents, read_agent) stable and predictable for
// callers.
func Normalize(entries []string) []string {
	out := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matchesOne(name, p) {
			return true
		}
	}
	return false
}

func matchesOne(name, pattern string) bool {
	if !isGlob(pattern) {
		return name == pattern
	}
	ok, err := filepath.Match(pattern, name)
	if err != nil {
		return false
	}
	return ok
}

func isGlob(pattern string) bool {
	for _, r := range pattern {
		if r == '*' || r == '?' {
			return true
		}
	}
	return false
}

