package source

import (
	"testing"

	"NarrativeRadar/internal/domain/models"
)

func labelsOf(items []models.ParentCandidate) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestBlockRemovesMatchingLabels(t *testing.T) {
	items := []models.ParentCandidate{
		{Label: "SHIB clone", Matches: 5},
		{Label: "dogwifhat", Matches: 4},
		{Label: "shiba-offshoot", Matches: 3},
	}
	opts := DefaultOptions()
	opts.Block = []string{"shib"}
	got := ApplySeedSemantics("dogs", []string{"dog"}, opts, items, 0)
	if len(got) != 1 || got[0].Label != "dogwifhat" {
		t.Fatalf("block filter wrong: %v", labelsOf(got))
	}
}

func TestNameMatchGate(t *testing.T) {
	items := []models.ParentCandidate{
		{Label: "dogs-token", Matches: 9},    // narrative name only
		{Label: "dogs-wif-token", Matches: 8}, // narrative name plus a term
		{Label: "wif-token", Matches: 7},      // term only
	}
	opts := DefaultOptions()
	opts.AllowNameMatch = false
	got := ApplySeedSemantics("dogs", []string{"dogs", "wif"}, opts, items, 0)
	if len(got) != 2 {
		t.Fatalf("expected the name-only item dropped: %v", labelsOf(got))
	}
	for _, it := range got {
		if it.Label == "dogs-token" {
			t.Fatalf("name-only item must be dropped when name matching is off")
		}
	}
}

func TestRequireAllTerms(t *testing.T) {
	items := []models.ParentCandidate{
		{Label: "dogwif", Matches: 9},
		{Label: "dog-only", Matches: 8},
		{Label: "wif-only", Matches: 7},
	}
	opts := DefaultOptions()
	opts.RequireAllTerms = true
	got := ApplySeedSemantics("dogs", []string{"dog", "wif"}, opts, items, 0)
	if len(got) != 1 || got[0].Label != "dogwif" {
		t.Fatalf("require-all-terms wrong: %v", labelsOf(got))
	}
}

func TestCapTruncatesAfterSort(t *testing.T) {
	items := []models.ParentCandidate{
		{Label: "c", Matches: 1},
		{Label: "a", Matches: 9},
		{Label: "b", Matches: 5},
	}
	got := ApplySeedSemantics("n", nil, DefaultOptions(), items, 2)
	if len(got) != 2 || got[0].Label != "a" || got[1].Label != "b" {
		t.Fatalf("cap must keep the top of the sorted list: %v", labelsOf(got))
	}
}

func TestZeroCapUnlimited(t *testing.T) {
	items := []models.ParentCandidate{{Label: "a"}, {Label: "b"}, {Label: "c"}, {Label: "d"}}
	got := ApplySeedSemantics("n", nil, DefaultOptions(), items, 0)
	if len(got) != 4 {
		t.Fatalf("cap 0 must be unlimited, got %d", len(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	items := []models.ParentCandidate{
		{Label: "z", Matches: 1},
		{Label: "a", Matches: 9},
	}
	_ = ApplySeedSemantics("n", nil, DefaultOptions(), items, 0)
	if items[0].Label != "z" {
		t.Fatalf("input order mutated")
	}
}
