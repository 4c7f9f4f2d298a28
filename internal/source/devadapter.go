package source

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"NarrativeRadar/internal/domain/models"
)

// DevAdapter simulates provider variability without network I/O: a random
// number of rows (2..6) with random relevance counts in [3,42].
type DevAdapter struct {
	raw  *RawCache
	rand *rand.Rand
}

func NewDevAdapter(raw *RawCache, seed int64) *DevAdapter {
	return &DevAdapter{raw: raw, rand: rand.New(rand.NewSource(seed))}
}

func (a *DevAdapter) Name() string { return "dev" }

func (a *DevAdapter) ParentsFor(_ context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate {
	items := memoRaw(a.raw, "dev", terms, func() []models.ParentCandidate {
		return a.randomItems(terms)
	})
	return ApplySeedSemantics(narrative, terms, opts, items, 3)
}

func (a *DevAdapter) randomItems(terms []string) []models.ParentCandidate {
	n := 2 + a.rand.Intn(5)
	out := make([]models.ParentCandidate, 0, n)
	for i := 0; i < n; i++ {
		base := fmt.Sprintf("parent%d", i)
		if len(terms) > 0 {
			base = terms[i%len(terms)]
		}
		out = append(out, models.ParentCandidate{
			Label:   fmt.Sprintf("%s-source-%d", base, i+1),
			Matches: 3 + a.rand.Intn(40),
			Source:  "dev",
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Matches > out[j].Matches })
	return out
}
