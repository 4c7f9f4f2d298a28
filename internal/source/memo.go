package source

import (
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/service/cache"
)

// Default memoization windows when configuration leaves them unset: raw
// provider results go stale quickly, search id resolution is stable.
const (
	DefaultRawTTL    = time.Minute
	DefaultSearchTTL = 15 * time.Minute
)

// RawCache memoizes an adapter's raw candidate list per
// (provider, normalized terms). Narrative-dependent filtering is applied
// after memoization, so narratives sharing a term set share one fetch.
type RawCache = cache.TTLCache[[]models.ParentCandidate]

func memoRaw(c *RawCache, provider string, terms []string, producer func() []models.ParentCandidate) []models.ParentCandidate {
	key := cache.RawKey(provider, terms)
	if hit, ok := c.Get(key); ok {
		return hit
	}
	val := producer()
	if val == nil {
		val = []models.ParentCandidate{}
	}
	c.Set(key, val)
	return val
}
