package scoring

import (
	"math"
	"sort"
	"strings"

	"NarrativeRadar/internal/domain/models"
)

// NormalizeLinear maps each value to v/max(values). When every value is zero
// (or the list is empty) all scores are zero; scores land in [0,1] and the
// maximal value scores exactly 1.
func NormalizeLinear(values []float64) []float64 {
	out := make([]float64, len(values))
	maxV := 0.0
	for _, v := range values {
		if v > maxV {
			maxV = v
		}
	}
	if maxV == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / maxV
	}
	return out
}

// RobustZ computes median/MAD z-scores clamped to [-3, 3]. A zero MAD
// (constant input) yields all-zero scores rather than a division blowup.
func RobustZ(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	med := median(values)
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - med)
	}
	mad := median(dev)
	if mad == 0 {
		return out
	}
	for i, v := range values {
		z := (v - med) / (1.4826 * mad)
		out[i] = clamp(z, -3, 3)
	}
	return out
}

// HeatScore combines independently z-scored volume and liquidity signals
// into a 0..100 reading, rounded to one decimal.
func HeatScore(zVolume, zLiquidity, weightVolume, weightLiquidity float64) float64 {
	x := weightVolume*zVolume + weightLiquidity*zLiquidity
	return math.Round(1000/(1+math.Exp(-x))) / 10
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Order sorts candidates in place: score descending, then matches
// descending, then label ascending case-insensitive. The three-level key
// yields a total order even under exact score/match ties.
func Order(items []models.ParentCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if items[i].Matches != items[j].Matches {
			return items[i].Matches > items[j].Matches
		}
		return strings.ToLower(items[i].Label) < strings.ToLower(items[j].Label)
	})
}
