package source

import (
	"context"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/merge"
	"NarrativeRadar/internal/scoring"
	"NarrativeRadar/pkg/logger"
)

// BlendAdapter fans out to coingecko and dexscreener, merges the two result
// sets by stable key, and re-normalizes scores across the merged set so
// cross-source values are comparable. A failure on either side never stops
// the other from contributing.
type BlendAdapter struct {
	cg  *CoinGeckoAdapter
	ds  *DexScreenerAdapter
	cfg merge.Config
	cap int
	log *logger.Logger
}

func NewBlendAdapter(cg *CoinGeckoAdapter, ds *DexScreenerAdapter, cfg merge.Config, cap int, log *logger.Logger) *BlendAdapter {
	if cfg.WeightFirst == 0 && cfg.WeightSecond == 0 {
		cfg = merge.DefaultConfig()
	}
	if cap <= 0 {
		cap = 25
	}
	return &BlendAdapter{cg: cg, ds: ds, cfg: cfg, cap: cap, log: log}
}

func (a *BlendAdapter) Name() string { return "blend" }

func (a *BlendAdapter) ParentsFor(ctx context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate {
	cgItems := a.side(ctx, narrative, terms, a.cg.Name(), a.cg.RawParents)
	dsItems := a.side(ctx, narrative, terms, a.ds.Name(), a.ds.RawParents)

	merged := merge.Merge(cgItems, dsItems, a.cfg)
	renormalize(merged)

	out := ApplySeedSemantics(narrative, terms, opts, merged, a.cap)
	a.log.Info("blend parents",
		logger.String("narrative", narrative),
		logger.Int("coingecko", len(cgItems)),
		logger.Int("dexscreener", len(dsItems)),
		logger.Int("merged", len(out)))
	return out
}

type rawFn func(ctx context.Context, narrative string, terms []string) []models.ParentCandidate

// side isolates one provider: a panic or empty result on one side must not
// prevent the other from contributing.
func (a *BlendAdapter) side(ctx context.Context, narrative string, terms []string, name string, fn rawFn) (items []models.ParentCandidate) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("provider side failed in blend",
				logger.String("provider", name),
				logger.String("narrative", narrative),
				logger.Any("panic", r))
			items = nil
		}
	}()
	return fn(ctx, narrative, terms)
}

// renormalize divides every score by the set maximum so the merged response
// lands back in [0,1].
func renormalize(items []models.ParentCandidate) {
	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = it.Score
	}
	normalized := scoring.NormalizeLinear(scores)
	for i := range items {
		items[i].Score = normalized[i]
	}
}
