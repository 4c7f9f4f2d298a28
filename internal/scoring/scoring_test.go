package scoring

import (
	"math"
	"testing"

	"NarrativeRadar/internal/domain/models"
)

func TestNormalizeLinearBounds(t *testing.T) {
	vals := []float64{10, 40, 0, 25}
	got := NormalizeLinear(vals)
	maxSeen := 0.0
	for i, s := range got {
		if s < 0 || s > 1 {
			t.Fatalf("score %d out of range: %v", i, s)
		}
		if s > maxSeen {
			maxSeen = s
		}
	}
	if got[1] != 1.0 {
		t.Fatalf("maximal volume must score 1.0, got %v", got[1])
	}
	if got[2] != 0 {
		t.Fatalf("zero volume must score 0, got %v", got[2])
	}
	if maxSeen != 1.0 {
		t.Fatalf("expected a score of exactly 1.0")
	}
}

func TestNormalizeLinearAllZero(t *testing.T) {
	got := NormalizeLinear([]float64{0, 0, 0})
	for i, s := range got {
		if s != 0 {
			t.Fatalf("all-zero input must yield zero score, got %v at %d", s, i)
		}
	}
}

func TestRobustZClamp(t *testing.T) {
	vals := []float64{1, 1, 1, 1, 1000000}
	got := RobustZ(vals)
	for i, z := range got {
		if z < -3 || z > 3 {
			t.Fatalf("z %d out of [-3,3]: %v", i, z)
		}
	}
	if got[4] != 3 {
		t.Fatalf("outlier must clamp to 3, got %v", got[4])
	}
}

func TestRobustZConstantInput(t *testing.T) {
	got := RobustZ([]float64{5, 5, 5})
	for _, z := range got {
		if z != 0 {
			t.Fatalf("zero MAD must yield zero z, got %v", z)
		}
	}
}

func TestRobustZCentering(t *testing.T) {
	got := RobustZ([]float64{1, 2, 3, 4, 5})
	if got[2] != 0 {
		t.Fatalf("median element must score 0, got %v", got[2])
	}
	if got[4] <= 0 || got[0] >= 0 {
		t.Fatalf("expected symmetric signs, got %v", got)
	}
}

func TestHeatScore(t *testing.T) {
	// x = 0 → sigmoid = 0.5 → heat 50.0
	if h := HeatScore(0, 0, 0.6, 0.4); h != 50.0 {
		t.Fatalf("neutral heat must be 50.0, got %v", h)
	}
	h := HeatScore(3, 3, 0.6, 0.4)
	want := math.Round(1000/(1+math.Exp(-3))) / 10
	if h != want {
		t.Fatalf("heat %v, want %v", h, want)
	}
	if h <= 50 || h > 100 {
		t.Fatalf("hot reading out of range: %v", h)
	}
}

func TestOrderThreeLevelKey(t *testing.T) {
	items := []models.ParentCandidate{
		{Label: "beta", Score: 0.5, Matches: 3},
		{Label: "Alpha", Score: 0.5, Matches: 3},
		{Label: "gamma", Score: 0.9, Matches: 1},
		{Label: "delta", Score: 0.5, Matches: 7},
	}
	Order(items)
	want := []string{"gamma", "delta", "Alpha", "beta"}
	for i, w := range want {
		if items[i].Label != w {
			t.Fatalf("position %d: got %q want %q (%v)", i, items[i].Label, w, items)
		}
	}
}

func TestOrderStableUnderRepetition(t *testing.T) {
	build := func() []models.ParentCandidate {
		return []models.ParentCandidate{
			{Label: "b", Score: 0.2, Matches: 2},
			{Label: "a", Score: 0.2, Matches: 2},
			{Label: "c", Score: 0.8, Matches: 1},
		}
	}
	first := build()
	Order(first)
	for i := 0; i < 5; i++ {
		again := build()
		Order(again)
		for j := range first {
			if first[j].Label != again[j].Label {
				t.Fatalf("ordering unstable at run %d pos %d", i, j)
			}
		}
	}
}
