package cache

import (
	"sort"
	"strings"
)

// NormalizeTerms lowercases, trims, dedupes and sorts terms so that order,
// case, whitespace and duplication never change the cache key. Two narratives
// sharing a term set share one underlying fetch.
func NormalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := strings.ToLower(strings.TrimSpace(t))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// RawKey builds the raw-fetch cache key for a provider and term set.
func RawKey(provider string, terms []string) string {
	return provider + "|" + strings.Join(NormalizeTerms(terms), ",")
}

// SearchKey builds the per-term search cache key.
func SearchKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
