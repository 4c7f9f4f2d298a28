package source

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/scoring"
	"NarrativeRadar/internal/service/fetch"
	"NarrativeRadar/pkg/logger"
)

// DedupeMode picks the winner when two pairs resolve to the same
// (address, symbol) key.
type DedupeMode string

const (
	// DedupeFirstWins keeps the first occurrence encountered.
	DedupeFirstWins DedupeMode = "first"
	// DedupeVolumeWins keeps the higher-volume occurrence. The blend path
	// historically used this while the standalone path kept first-wins, so
	// both stay available explicitly.
	DedupeVolumeWins DedupeMode = "volume"
)

// DexScreenerConfig shapes the single-phase pair-search flow.
type DexScreenerConfig struct {
	BaseURL  string // api root, e.g. https://api.dexscreener.com
	MaxTerms int
	Pacing   time.Duration // self-imposed delay between term queries
	Cap      int
	Dedupe   DedupeMode
}

func (c *DexScreenerConfig) applyDefaults() {
	if c.MaxTerms <= 0 {
		c.MaxTerms = 3
	}
	if c.Pacing <= 0 {
		c.Pacing = 200 * time.Millisecond
	}
	if c.Cap <= 0 {
		c.Cap = 25
	}
	if c.Dedupe == "" {
		c.Dedupe = DedupeFirstWins
	}
}

// DexScreenerAdapter queries the pair-search endpoint per term and extracts
// base-token records. Every failure path ends in an empty list, never an
// error.
type DexScreenerAdapter struct {
	cfg     DexScreenerConfig
	fetcher *fetch.Fetcher
	raw     *RawCache
	log     *logger.Logger
	sleep   func(context.Context, time.Duration) error
}

func NewDexScreenerAdapter(cfg DexScreenerConfig, fetcher *fetch.Fetcher, raw *RawCache, log *logger.Logger) *DexScreenerAdapter {
	cfg.applyDefaults()
	return &DexScreenerAdapter{
		cfg:     cfg,
		fetcher: fetcher,
		raw:     raw,
		log:     log,
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
	}
}

// SetSleep replaces the pacing sleep for tests.
func (a *DexScreenerAdapter) SetSleep(sleep func(context.Context, time.Duration) error) {
	a.sleep = sleep
}

func (a *DexScreenerAdapter) Name() string { return "dexscreener" }

func (a *DexScreenerAdapter) ParentsFor(ctx context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate {
	items := a.RawParents(ctx, narrative, terms)
	return ApplySeedSemantics(narrative, terms, opts, items, 0)
}

// RawParents returns the memoized, unfiltered candidate list for the blend
// path.
func (a *DexScreenerAdapter) RawParents(ctx context.Context, narrative string, terms []string) []models.ParentCandidate {
	return memoRaw(a.raw, "dexscreener", terms, func() []models.ParentCandidate {
		return a.fetchParents(ctx, narrative, terms)
	})
}

type dsPair struct {
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
		Name    string `json:"name"`
	} `json:"baseToken"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
	PriceUsd      string  `json:"priceUsd"`
	Fdv           float64 `json:"fdv"`
	ChainID       string  `json:"chainId"`
	DexID         string  `json:"dexId"`
	PairAddress   string  `json:"pairAddress"`
	URL           string  `json:"url"`
	PairURL       string  `json:"pairUrl"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
}

type dsSearchResponse struct {
	Pairs []dsPair `json:"pairs"`
}

func (a *DexScreenerAdapter) fetchParents(ctx context.Context, narrative string, terms []string) []models.ParentCandidate {
	searchTerms := filterSearchTerms(terms, a.cfg.MaxTerms)
	if len(searchTerms) == 0 {
		a.log.Info("no usable pair-search terms", logger.String("narrative", narrative))
		return nil
	}

	byKey := make(map[string]int) // dedupe key -> index into items
	var items []models.ParentCandidate

	for i, term := range searchTerms {
		if i > 0 {
			if err := a.sleep(ctx, a.cfg.Pacing); err != nil {
				break
			}
		}

		var resp dsSearchResponse
		if ok := a.fetcher.GetJSON(ctx, a.cfg.BaseURL+"/latest/dex/search", url.Values{"q": {term}}, &resp); !ok {
			continue
		}

		for _, p := range resp.Pairs {
			cand, ok := a.mapPair(p)
			if !ok {
				continue
			}
			key := strings.ToLower(cand.Address) + "|" + strings.ToLower(cand.Symbol)
			idx, dup := byKey[key]
			if !dup {
				byKey[key] = len(items)
				items = append(items, cand)
				continue
			}
			// duplicate entity: the losing pair still counts as evidence
			switch a.cfg.Dedupe {
			case DedupeVolumeWins:
				if models.FloatOrZero(cand.Vol24h) > models.FloatOrZero(items[idx].Vol24h) {
					cand.Children = append(items[idx].Children, cand.Children...)
					items[idx] = cand
					continue
				}
			}
			items[idx].Children = append(items[idx].Children, cand.Children...)
		}
	}

	a.scoreItems(items)
	scoring.Order(items)
	if len(items) > a.cfg.Cap {
		items = items[:a.cfg.Cap]
	}
	a.log.Info("dexscreener parents",
		logger.String("narrative", narrative),
		logger.Int("terms", len(searchTerms)),
		logger.Int("parents", len(items)))
	return items
}

// mapPair extracts a candidate from one pair row. Rows without a label,
// chain or address are unusable and dropped.
func (a *DexScreenerAdapter) mapPair(p dsPair) (models.ParentCandidate, bool) {
	name := strings.TrimSpace(p.BaseToken.Name)
	if name == "" {
		name = strings.TrimSpace(p.BaseToken.Symbol)
	}
	address := p.BaseToken.Address
	if address == "" {
		address = p.PairAddress
	}
	if name == "" || p.ChainID == "" || address == "" {
		return models.ParentCandidate{}, false
	}

	pairURL := p.URL
	if pairURL == "" {
		pairURL = p.PairURL
	}

	cand := models.ParentCandidate{
		Label:   name,
		Symbol:  p.BaseToken.Symbol,
		Chain:   p.ChainID,
		Address: address,
		URL:     pairURL,
		Source:  "dexscreener",
		Children: []models.Evidence{{
			Symbol:        p.BaseToken.Symbol,
			Name:          p.BaseToken.Name,
			Address:       p.BaseToken.Address,
			PairAddress:   p.PairAddress,
			DexID:         p.DexID,
			ChainID:       p.ChainID,
			URL:           pairURL,
			Volume24hUsd:  p.Volume.H24,
			LiquidityUsd:  p.Liquidity.Usd,
			PairCreatedAt: p.PairCreatedAt,
		}},
	}
	if price, err := strconv.ParseFloat(p.PriceUsd, 64); err == nil && price != 0 {
		cand.Price = models.Float64Ptr(price)
	}
	if p.Volume.H24 != 0 {
		cand.Vol24h = models.Float64Ptr(p.Volume.H24)
	}
	if p.Fdv != 0 {
		// fdv stands in for a market cap on-chain
		cand.MarketCap = models.Float64Ptr(p.Fdv)
	}
	if p.Liquidity.Usd != 0 {
		cand.LiquidityUsd = models.Float64Ptr(p.Liquidity.Usd)
	}
	return cand, true
}

// scoreItems normalizes by volume, falling back to liquidity, then to a
// flat score when neither signal exists.
func (a *DexScreenerAdapter) scoreItems(items []models.ParentCandidate) {
	if len(items) == 0 {
		return
	}
	vols := make([]float64, len(items))
	liqs := make([]float64, len(items))
	anyVol, anyLiq := false, false
	for i, it := range items {
		vols[i] = models.FloatOrZero(it.Vol24h)
		liqs[i] = models.FloatOrZero(it.LiquidityUsd)
		if vols[i] > 0 {
			anyVol = true
		}
		if liqs[i] > 0 {
			anyLiq = true
		}
	}

	var scores []float64
	switch {
	case anyVol:
		scores = scoring.NormalizeLinear(vols)
	case anyLiq:
		scores = scoring.NormalizeLinear(liqs)
	default:
		for i := range items {
			items[i].Score = 0.1
			items[i].Matches = 10
		}
		return
	}
	for i := range items {
		items[i].Score = scores[i]
		items[i].Matches = int(math.Round(100 * scores[i]))
	}
}
