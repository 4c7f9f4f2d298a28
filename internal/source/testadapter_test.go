package source

import (
	"context"
	"testing"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/service/cache"
)

func newRawCache(ttl time.Duration) *RawCache {
	return cache.NewTTLCache[[]models.ParentCandidate](ttl)
}

func TestDeterministicMatchesElevenTenNine(t *testing.T) {
	a := NewTestAdapter(newRawCache(time.Minute))
	got := a.ParentsFor(context.Background(), "whatever", []string{"dog", "wif", "bonk"}, DefaultOptions())
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	wantMatches := []int{11, 10, 9}
	wantLabels := []string{"dog-source-1", "wif-source-2", "bonk-source-3"}
	for i := range wantMatches {
		if got[i].Matches != wantMatches[i] {
			t.Fatalf("row %d matches %d want %d", i, got[i].Matches, wantMatches[i])
		}
		if got[i].Label != wantLabels[i] {
			t.Fatalf("row %d label %q want %q", i, got[i].Label, wantLabels[i])
		}
	}

	// narrative does not change the counts
	again := NewTestAdapter(newRawCache(time.Minute)).
		ParentsFor(context.Background(), "different", []string{"a1", "b2", "c3"}, DefaultOptions())
	for i := range wantMatches {
		if again[i].Matches != wantMatches[i] {
			t.Fatalf("matches depend on narrative: %v", again)
		}
	}
}

func TestDeterministicFewerTermsFallsBackPositionally(t *testing.T) {
	a := NewTestAdapter(newRawCache(time.Minute))
	got := a.ParentsFor(context.Background(), "dogs", []string{"wif"}, DefaultOptions())
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for _, it := range got {
		if it.Label == "" {
			t.Fatalf("labels must never be empty")
		}
	}
}

func TestDeterministicNoTermsUsesNarrative(t *testing.T) {
	items := DeterministicItems("dogs", nil)
	if items[0].Label != "dogs-source-1" {
		t.Fatalf("got %q", items[0].Label)
	}
	if items[1].Label != "parent-source-2" || items[2].Label != "seed-source-3" {
		t.Fatalf("placeholder fallback wrong: %v", items)
	}
}

func TestMemoizationSharesEquivalentTermSets(t *testing.T) {
	raw := newRawCache(time.Minute)
	calls := 0
	produce := func() []models.ParentCandidate {
		calls++
		return DeterministicItems("n", []string{"dog"})
	}

	memoRaw(raw, "test", []string{"Dog", " wif "}, produce)
	memoRaw(raw, "test", []string{"wif", "dog", "DOG"}, produce)
	if calls != 1 {
		t.Fatalf("equivalent term sets must share one fetch, got %d", calls)
	}

	memoRaw(raw, "test", []string{"bonk"}, produce)
	if calls != 2 {
		t.Fatalf("distinct term set must fetch, got %d", calls)
	}
}

func TestZeroTTLForcesFreshFetch(t *testing.T) {
	raw := newRawCache(0)
	calls := 0
	produce := func() []models.ParentCandidate {
		calls++
		return DeterministicItems("n", nil)
	}
	memoRaw(raw, "test", []string{"dog"}, produce)
	memoRaw(raw, "test", []string{"dog"}, produce)
	if calls != 2 {
		t.Fatalf("ttl 0 must disable memoization, got %d calls", calls)
	}
}
