package source

import (
	"strings"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/scoring"
)

// ApplySeedSemantics filters candidates against a narrative's matching rules,
// then orders the survivors and truncates to cap (0 = unlimited). It is a
// stateless filter-map-sort pipeline; inputs are not mutated.
func ApplySeedSemantics(narrative string, terms []string, opts Options, items []models.ParentCandidate, cap int) []models.ParentCandidate {
	nl := strings.ToLower(narrative)
	termList := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			termList = append(termList, strings.ToLower(t))
		}
	}
	blockList := make([]string, 0, len(opts.Block))
	for _, b := range opts.Block {
		if b != "" {
			blockList = append(blockList, strings.ToLower(b))
		}
	}

	filtered := make([]models.ParentCandidate, 0, len(items))
	for _, it := range items {
		label := strings.ToLower(it.Label)
		if containsAny(label, blockList) {
			continue
		}
		// an item matching by narrative name alone is dropped when
		// name-matching is off
		if !opts.AllowNameMatch && nl != "" && strings.Contains(label, nl) {
			if !containsOther(label, termList, nl) {
				continue
			}
		}
		if opts.RequireAllTerms && len(termList) > 0 && !containsAll(label, termList) {
			continue
		}
		filtered = append(filtered, it)
	}

	scoring.Order(filtered)
	if cap > 0 && len(filtered) > cap {
		filtered = filtered[:cap]
	}
	return filtered
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// containsOther reports whether any term besides skip appears in s.
func containsOther(s string, subs []string, skip string) bool {
	for _, sub := range subs {
		if sub == skip {
			continue
		}
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
