package source

import (
	"context"
	"fmt"

	"NarrativeRadar/internal/domain/models"
)

// TestAdapter returns a fixed 3-row candidate list derived positionally from
// the first terms. No network. Used for reproducible testing and as the
// last-resort fallback of the coingecko adapter.
type TestAdapter struct {
	raw *RawCache
}

func NewTestAdapter(raw *RawCache) *TestAdapter {
	return &TestAdapter{raw: raw}
}

func (a *TestAdapter) Name() string { return "test" }

func (a *TestAdapter) ParentsFor(_ context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate {
	items := memoRaw(a.raw, "test", terms, func() []models.ParentCandidate {
		return DeterministicItems(narrative, terms)
	})
	return ApplySeedSemantics(narrative, terms, opts, items, 3)
}

// DeterministicItems builds the fixed rows with relevance counts 11, 10, 9.
func DeterministicItems(narrative string, terms []string) []models.ParentCandidate {
	base := make([]string, 0, 3)
	for _, t := range terms {
		if t != "" {
			base = append(base, t)
		}
	}
	if len(base) == 0 {
		base = []string{narrative, "parent", "seed"}
	}
	pick := func(i int) string {
		if i >= len(base) {
			i = len(base) - 1
		}
		return base[i]
	}
	return []models.ParentCandidate{
		{Label: fmt.Sprintf("%s-source-1", pick(0)), Matches: 11, Source: "test"},
		{Label: fmt.Sprintf("%s-source-2", pick(1)), Matches: 10, Source: "test"},
		{Label: fmt.Sprintf("%s-source-3", pick(2)), Matches: 9, Source: "test"},
	}
}
