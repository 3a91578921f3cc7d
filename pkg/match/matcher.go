// Package match implements the ordered keyword-rule evaluator: filter words
// veto a title outright, otherwise the first group whose required words are
// all present and whose normal words (when any are configured) hit at least
// once claims the title.
package match

import (
	"strings"

	"github.com/askort/hotwords/pkg/domain"
)

// MatchedGroup returns the first group the title belongs to, in configured
// order. A title containing any filter word matches nothing, regardless of
// the groups. The declared rule order is the authoritative tie-break: a title
// is attributed to exactly one group even when several would match.
func MatchedGroup(title string, groups []domain.WordGroup, filterWords []string) (domain.WordGroup, bool) {
	lower := strings.ToLower(title)

	for _, w := range filterWords {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return domain.WordGroup{}, false
		}
	}

	for _, g := range groups {
		if !containsAll(lower, g.Required) {
			continue
		}
		if len(g.Normal) > 0 && !containsAny(lower, g.Normal) {
			continue
		}
		return g, true
	}
	return domain.WordGroup{}, false
}

// Matches reports whether the title belongs to any group
func Matches(title string, groups []domain.WordGroup, filterWords []string) bool {
	_, ok := MatchedGroup(title, groups, filterWords)
	return ok
}

func containsAll(lower string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(lower, strings.ToLower(w)) {
			return false
		}
	}
	return true
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
