package usecase

import (
	"context"
	"testing"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/repository"
)

func storeWith(t *testing.T, snaps ...models.Snapshot) *repository.MemorySnapshotStore {
	t.Helper()
	store := repository.NewMemorySnapshotStore()
	for _, s := range snaps {
		if err := store.Replace(context.Background(), s); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	return store
}

func snapWith(narrative string, vol, liq float64) models.Snapshot {
	return models.Snapshot{
		Narrative:  narrative,
		ComputedAt: time.Now(),
		Candidates: []models.ParentCandidate{{
			Label:        narrative + "-parent",
			Vol24h:       models.Float64Ptr(vol),
			LiquidityUsd: models.Float64Ptr(liq),
		}},
	}
}

func TestHeatmapOrdersByHeat(t *testing.T) {
	seedStore := loadTestSeeds(t, `{"narratives":[
		{"name":"cold","terms":["c"]},
		{"name":"hot","terms":["h"]},
		{"name":"mid","terms":["m"]}
	]}`)
	store := storeWith(t,
		snapWith("hot", 1_000_000, 500_000),
		snapWith("mid", 100_000, 50_000),
		snapWith("cold", 1_000, 500),
	)

	h := NewHeatmap(seedStore, store, DefaultHeatConfig())
	out, err := h.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("every seeded narrative gets a reading, got %d", len(out))
	}
	if out[0].Narrative != "hot" || out[2].Narrative != "cold" {
		t.Fatalf("ordering by heat: %v", out)
	}
	for _, n := range out {
		if n.HeatScore < 0 || n.HeatScore > 100 {
			t.Fatalf("heat out of range: %+v", n)
		}
	}
	if out[0].HeatScore <= out[2].HeatScore {
		t.Fatalf("hot must beat cold: %v vs %v", out[0].HeatScore, out[2].HeatScore)
	}
}

func TestHeatmapMissingSnapshotsCountAsZero(t *testing.T) {
	seedStore := loadTestSeeds(t, `{"narratives":[
		{"name":"hot","terms":["h"]},
		{"name":"unrefreshed","terms":["u"]}
	]}`)
	store := storeWith(t, snapWith("hot", 500_000, 100_000))

	h := NewHeatmap(seedStore, store, DefaultHeatConfig())
	out, err := h.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("unrefreshed narratives still appear: %d", len(out))
	}
	var unrefreshed models.NarrativeHeat
	for _, n := range out {
		if n.Narrative == "unrefreshed" {
			unrefreshed = n
		}
	}
	if unrefreshed.VolumeUsd != 0 || unrefreshed.LiquidityUsd != 0 {
		t.Fatalf("missing snapshot must contribute zero sums: %+v", unrefreshed)
	}
}

func TestHeatmapIdenticalSignalsAreNeutral(t *testing.T) {
	seedStore := loadTestSeeds(t, `{"narratives":[
		{"name":"a","terms":["a"]},
		{"name":"b","terms":["b"]}
	]}`)
	store := storeWith(t,
		snapWith("a", 100, 100),
		snapWith("b", 100, 100),
	)

	h := NewHeatmap(seedStore, store, DefaultHeatConfig())
	out, err := h.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, n := range out {
		if n.HeatScore != 50.0 {
			t.Fatalf("identical populations sit at the sigmoid midpoint: %+v", n)
		}
	}
	// ties order alphabetically
	if out[0].Narrative != "a" || out[1].Narrative != "b" {
		t.Fatalf("tie ordering: %v", out)
	}
}

func TestHeatmapLiquidityFromEvidence(t *testing.T) {
	seedStore := loadTestSeeds(t, `{"narratives":[{"name":"dogs","terms":["dog"]}]}`)
	store := storeWith(t, models.Snapshot{
		Narrative:  "dogs",
		ComputedAt: time.Now(),
		Candidates: []models.ParentCandidate{{
			Label:  "dogwifhat",
			Vol24h: models.Float64Ptr(100),
			Children: []models.Evidence{
				{LiquidityUsd: 40}, {LiquidityUsd: 60},
			},
		}},
	})

	h := NewHeatmap(seedStore, store, DefaultHeatConfig())
	out, err := h.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out[0].LiquidityUsd != 100 {
		t.Fatalf("evidence liquidity must roll up: %+v", out[0])
	}
}
