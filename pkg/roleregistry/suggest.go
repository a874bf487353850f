package roleregistry

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// suggestClosest returns the up to n known names most similar to query,
// ranked by difflib's sequence-matcher ratio, for "did you mean" hints on
// ErrNotFound (an unknown agent_type is a common spawn_agent mistake, and
// the ratio-based suggestion is cheap enough to compute unconditionally).
func suggestClosest(query string, known []string, n int) []string {
	if len(known) == 0 {
		return nil
	}
	type scored struct {
		name  string
		ratio float64
	}
	scoredNames := make([]scored, 0, len(known))
	for _, k := range known {
		ratio := difflib.NewMatcher(splitChars(query), splitChars(k)).Ratio()
		scoredNames = append(scoredNames, scored{name: k, ratio: ratio})
	}
	sort.Slice(scoredNames, func(i, j int) bool {
		if scoredNames[i].ratio != scoredNames[j].ratio {
			return scoredNames[i].ratio > scoredNames[j].ratio
		}
		return scoredNames[i].name < scoredNames[j].name
	})
	out := make([]string, 0, n)
	for _, s := range scoredNames {
		if s.ratio < 0.4 {
			break
		}
		out = append(out, s.name)
		if len(out) == n {
			break
		}
	}
	return out
}

func splitChars(s string) []string {
	out := make([]string, len(s))
	for i, r := range []byte(s) {
		out[i] = string(r)
	}
	return out
}
