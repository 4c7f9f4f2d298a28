package source

import (
	"context"
	"math"
	"net/url"
	"strings"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/scoring"
	"NarrativeRadar/internal/service/cache"
	"NarrativeRadar/internal/service/fetch"
	"NarrativeRadar/pkg/logger"
)

// SearchHit is one coin from the coingecko search endpoint, kept in the
// search cache so rank-based fallback scoring works without a refetch.
type SearchHit struct {
	ID   string
	Name string
	Rank int // 0 = absent
}

// SearchCache memoizes per-term coin search results.
type SearchCache = cache.TTLCache[[]SearchHit]

// CoinGeckoConfig shapes the two-phase coingecko flow.
type CoinGeckoConfig struct {
	BaseURL    string // api root, e.g. https://api.coingecko.com
	MaxTerms   int    // search terms per call
	IDsPerTerm int    // candidate ids collected per term
	MaxIDs     int    // unique ids across all terms
	Cap        int    // mapped rows kept
}

func (c *CoinGeckoConfig) applyDefaults() {
	if c.MaxTerms <= 0 {
		c.MaxTerms = 3
	}
	if c.IDsPerTerm <= 0 {
		c.IDsPerTerm = 10
	}
	if c.MaxIDs <= 0 {
		c.MaxIDs = 30
	}
	if c.Cap <= 0 {
		c.Cap = 25
	}
}

// CoinGeckoAdapter discovers parents in two phases: a per-term coin search,
// then one batch market-data call for every collected id. Transport trouble
// degrades down a fallback chain and never reaches the caller:
// market rows, then search-rank synthesis, then deterministic rows.
type CoinGeckoAdapter struct {
	cfg     CoinGeckoConfig
	fetcher *fetch.Fetcher
	raw     *RawCache
	search  *SearchCache
	log     *logger.Logger
}

func NewCoinGeckoAdapter(cfg CoinGeckoConfig, fetcher *fetch.Fetcher, raw *RawCache, search *SearchCache, log *logger.Logger) *CoinGeckoAdapter {
	cfg.applyDefaults()
	return &CoinGeckoAdapter{cfg: cfg, fetcher: fetcher, raw: raw, search: search, log: log}
}

func (a *CoinGeckoAdapter) Name() string { return "coingecko" }

func (a *CoinGeckoAdapter) ParentsFor(ctx context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate {
	items := a.RawParents(ctx, narrative, terms)
	return ApplySeedSemantics(narrative, terms, opts, items, 0)
}

// RawParents returns the memoized, unfiltered candidate list. The blend
// adapter consumes this directly so seed semantics apply once, post-merge.
func (a *CoinGeckoAdapter) RawParents(ctx context.Context, narrative string, terms []string) []models.ParentCandidate {
	return memoRaw(a.raw, "coingecko", terms, func() []models.ParentCandidate {
		return a.fetchParents(ctx, narrative, terms)
	})
}

func (a *CoinGeckoAdapter) fetchParents(ctx context.Context, narrative string, terms []string) []models.ParentCandidate {
	searchTerms := filterSearchTerms(terms, a.cfg.MaxTerms)
	if len(searchTerms) == 0 {
		a.log.Debug("no usable search terms", logger.String("narrative", narrative))
		return DeterministicItems(narrative, terms)
	}

	hits := a.searchCoins(ctx, searchTerms)
	if len(hits) == 0 {
		a.log.Warn("coin search yielded nothing",
			logger.String("narrative", narrative), logger.Strings("terms", searchTerms))
		return DeterministicItems(narrative, terms)
	}

	rows := a.marketData(ctx, hits)
	if len(rows) > 0 {
		items := a.mapMarketRows(rows)
		if len(items) > 0 {
			a.log.Info("coingecko parents mapped",
				logger.String("narrative", narrative),
				logger.Int("ids", len(hits)),
				logger.Int("markets", len(rows)),
				logger.Int("mapped", len(items)))
			return items
		}
	}

	// market phase empty: search results alone still give a meaningful order
	items := a.synthesizeFromSearch(hits)
	if len(items) > 0 {
		a.log.Info("coingecko fallback to search ranks",
			logger.String("narrative", narrative), logger.Int("hits", len(hits)))
		return items
	}
	return DeterministicItems(narrative, terms)
}

type cgSearchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		MarketCapRank int    `json:"market_cap_rank"`
	} `json:"coins"`
}

// searchCoins collects up to IDsPerTerm hits per term and MaxIDs unique ids
// total, consulting and populating the per-term search cache.
func (a *CoinGeckoAdapter) searchCoins(ctx context.Context, terms []string) []SearchHit {
	seen := make(map[string]struct{})
	var out []SearchHit

	add := func(hits []SearchHit) {
		for _, h := range hits {
			if len(out) >= a.cfg.MaxIDs {
				return
			}
			if _, dup := seen[h.ID]; dup {
				continue
			}
			seen[h.ID] = struct{}{}
			out = append(out, h)
		}
	}

	for _, term := range terms {
		if len(out) >= a.cfg.MaxIDs {
			break
		}
		key := cache.SearchKey(term)
		if cached, ok := a.search.Get(key); ok {
			a.log.Debug("search cache hit", logger.String("term", term))
			add(cached)
			continue
		}

		var resp cgSearchResponse
		if ok := a.fetcher.GetJSON(ctx, a.cfg.BaseURL+"/api/v3/search", url.Values{"query": {strings.TrimSpace(term)}}, &resp); !ok {
			continue
		}

		hits := make([]SearchHit, 0, a.cfg.IDsPerTerm)
		for _, c := range resp.Coins {
			if len(hits) >= a.cfg.IDsPerTerm {
				break
			}
			if c.ID == "" {
				continue
			}
			hits = append(hits, SearchHit{ID: c.ID, Name: c.Name, Rank: c.MarketCapRank})
		}
		if len(hits) > 0 {
			a.search.Set(key, hits)
		}
		add(hits)
	}
	return out
}

type cgMarketRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"`
	TotalVolume  float64 `json:"total_volume"`
	Image        string  `json:"image"`
}

// marketData batch-queries market rows for every collected id in one call.
func (a *CoinGeckoAdapter) marketData(ctx context.Context, hits []SearchHit) []cgMarketRow {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}

	params := url.Values{
		"vs_currency": {"usd"},
		"ids":         {strings.Join(ids, ",")},
		"order":       {"market_cap_desc"},
		"per_page":    {"250"},
		"page":        {"1"},
		"sparkline":   {"false"},
	}
	var rows []cgMarketRow
	if ok := a.fetcher.GetJSON(ctx, a.cfg.BaseURL+"/api/v3/coins/markets", params, &rows); !ok {
		return nil
	}
	return rows
}

func (a *CoinGeckoAdapter) mapMarketRows(rows []cgMarketRow) []models.ParentCandidate {
	items := make([]models.ParentCandidate, 0, len(rows))
	vols := make([]float64, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		it := models.ParentCandidate{
			Label:  name,
			Symbol: strings.ToUpper(row.Symbol),
			Image:  row.Image,
			URL:    "https://www.coingecko.com/en/coins/" + row.ID,
			Source: "coingecko",
		}
		if row.CurrentPrice != 0 {
			it.Price = models.Float64Ptr(row.CurrentPrice)
		}
		if row.MarketCap != 0 {
			it.MarketCap = models.Float64Ptr(row.MarketCap)
		}
		if row.TotalVolume != 0 {
			it.Vol24h = models.Float64Ptr(row.TotalVolume)
		}
		items = append(items, it)
		vols = append(vols, row.TotalVolume)
	}

	scores := scoring.NormalizeLinear(vols)
	allZero := true
	for _, v := range vols {
		if v > 0 {
			allZero = false
			break
		}
	}
	for i := range items {
		if allZero {
			items[i].Matches = 10
			continue
		}
		items[i].Score = scores[i]
		items[i].Matches = int(math.Round(100 * scores[i]))
	}

	scoring.Order(items)
	if len(items) > a.cfg.Cap {
		items = items[:a.cfg.Cap]
	}
	return items
}

// synthesizeFromSearch scores by provider rank so ordering stays meaningful
// without volume data: max(3, 100-rank), absent ranks pushed to the floor.
func (a *CoinGeckoAdapter) synthesizeFromSearch(hits []SearchHit) []models.ParentCandidate {
	items := make([]models.ParentCandidate, 0, len(hits))
	for _, h := range hits {
		name := strings.TrimSpace(h.Name)
		if name == "" {
			name = h.ID
		}
		if name == "" {
			continue
		}
		rank := h.Rank
		if rank <= 0 {
			rank = 1000
		}
		matches := 100 - rank
		if matches < 3 {
			matches = 3
		}
		items = append(items, models.ParentCandidate{
			Label:   name,
			Matches: matches,
			Score:   float64(matches) / 100,
			URL:     "https://www.coingecko.com/en/coins/" + h.ID,
			Source:  "coingecko",
		})
	}
	scoring.Order(items)
	if len(items) > a.cfg.Cap {
		items = items[:a.cfg.Cap]
	}
	return items
}

// genericTerms never search well on their own; they are skipped.
var genericTerms = map[string]struct{}{
	"swap": {}, "defi": {}, "nft": {}, "play": {}, "fun": {}, "meta": {},
}

// filterSearchTerms keeps the usable terms among the first maxTerms:
// non-empty after trimming, at least 3 characters, not in the generic
// stoplist.
func filterSearchTerms(terms []string, maxTerms int) []string {
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	out := make([]string, 0, maxTerms)
	for _, t := range terms {
		trimmed := strings.TrimSpace(t)
		if len(trimmed) < 3 {
			continue
		}
		if _, generic := genericTerms[strings.ToLower(trimmed)]; generic {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
