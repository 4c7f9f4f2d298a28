package usecase

import (
	"context"
	"sort"
	"strings"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/domain/repository"
	"NarrativeRadar/internal/scoring"
	"NarrativeRadar/internal/seeds"
)

// HeatConfig carries the z-score mixing weights for the heat reading.
type HeatConfig struct {
	WeightVolume    float64
	WeightLiquidity float64
}

func DefaultHeatConfig() HeatConfig {
	return HeatConfig{WeightVolume: 0.6, WeightLiquidity: 0.4}
}

// Heatmap turns the latest snapshots into a narrative-level heat reading:
// per-narrative on-chain volume and liquidity sums, robust z-scored across
// all narratives, squashed through a sigmoid onto a 0-100 scale.
type Heatmap struct {
	seeds *seeds.Store
	store repository.SnapshotStore
	cfg   HeatConfig
}

func NewHeatmap(seedStore *seeds.Store, store repository.SnapshotStore, cfg HeatConfig) *Heatmap {
	if cfg.WeightVolume == 0 && cfg.WeightLiquidity == 0 {
		cfg = DefaultHeatConfig()
	}
	return &Heatmap{seeds: seedStore, store: store, cfg: cfg}
}

// Compute reads the latest snapshot for every narrative and scores them
// against each other. Narratives without a snapshot contribute zero sums,
// which keeps the z-score population stable across partial refreshes.
func (h *Heatmap) Compute(ctx context.Context) ([]models.NarrativeHeat, error) {
	names := h.seeds.Names()
	out := make([]models.NarrativeHeat, 0, len(names))
	vols := make([]float64, 0, len(names))
	liqs := make([]float64, 0, len(names))

	for _, name := range names {
		snap, ok, err := h.store.Latest(ctx, name)
		var vol, liq float64
		if err != nil {
			return nil, err
		}
		if ok {
			vol, liq = aggregateSignals(snap.Candidates)
		}
		out = append(out, models.NarrativeHeat{Narrative: name, VolumeUsd: vol, LiquidityUsd: liq})
		vols = append(vols, vol)
		liqs = append(liqs, liq)
	}

	zv := scoring.RobustZ(vols)
	zl := scoring.RobustZ(liqs)
	for i := range out {
		out[i].HeatScore = scoring.HeatScore(zv[i], zl[i], h.cfg.WeightVolume, h.cfg.WeightLiquidity)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HeatScore != out[j].HeatScore {
			return out[i].HeatScore > out[j].HeatScore
		}
		return strings.ToLower(out[i].Narrative) < strings.ToLower(out[j].Narrative)
	})
	return out, nil
}

// aggregateSignals sums candidate volume and liquidity, preferring the
// pair-level evidence when the parent carries no liquidity of its own.
func aggregateSignals(items []models.ParentCandidate) (vol, liq float64) {
	for _, it := range items {
		vol += models.FloatOrZero(it.Vol24h)
		if it.LiquidityUsd != nil {
			liq += *it.LiquidityUsd
			continue
		}
		for _, c := range it.Children {
			liq += c.LiquidityUsd
		}
	}
	return vol, liq
}
