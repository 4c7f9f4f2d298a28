package source

import (
	"context"
	"testing"
	"time"
)

func TestDevAdapterBoundedOutput(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		a := NewDevAdapter(newRawCache(time.Minute), seed)
		items := a.randomItems([]string{"dog", "wif"})
		if len(items) < 2 || len(items) > 6 {
			t.Fatalf("seed %d: expected 2..6 rows, got %d", seed, len(items))
		}
		for i, it := range items {
			if it.Matches < 3 || it.Matches > 42 {
				t.Fatalf("seed %d: matches out of [3,42]: %d", seed, it.Matches)
			}
			if i > 0 && items[i-1].Matches < it.Matches {
				t.Fatalf("seed %d: rows must be sorted descending", seed)
			}
		}
	}
}

func TestDevAdapterAppliesSeedSemantics(t *testing.T) {
	a := NewDevAdapter(newRawCache(time.Minute), 1)
	got := a.ParentsFor(context.Background(), "dogs", []string{"dog"}, DefaultOptions())
	if len(got) > 3 {
		t.Fatalf("dev adapter caps at 3, got %d", len(got))
	}
}
