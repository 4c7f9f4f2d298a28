package cache

import (
	"testing"
	"time"
)

func TestGetMissOnAbsent(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestSetGetWithinTTL(t *testing.T) {
	now := time.Unix(5000, 0)
	c := NewTTLCache[[]string](time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set("k", []string{"a", "b"})
	now = now.Add(59 * time.Second)
	v, ok := c.Get("k")
	if !ok || len(v) != 2 {
		t.Fatalf("expected hit within ttl, got ok=%v v=%v", ok, v)
	}
}

func TestExpiryByTimestamp(t *testing.T) {
	now := time.Unix(5000, 0)
	c := NewTTLCache[int](time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set("k", 7)
	now = now.Add(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected stale entry to miss")
	}
	// refresh supersedes the stale entry
	c.Set("k", 8)
	if v, ok := c.Get("k"); !ok || v != 8 {
		t.Fatalf("expected refreshed value, got ok=%v v=%v", ok, v)
	}
}

func TestZeroTTLNeverHits(t *testing.T) {
	now := time.Unix(5000, 0)
	c := NewTTLCache[int](0)
	c.SetClock(func() time.Time { return now })

	c.Set("k", 1)
	now = now.Add(time.Nanosecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("ttl 0 must disable memoization")
	}
}

func TestNormalizeTerms(t *testing.T) {
	got := RawKey("coingecko", []string{" Dog ", "WIF", "dog", "", "ai"})
	want := RawKey("coingecko", []string{"ai", "wif", "DOG"})
	if got != want {
		t.Fatalf("keys differ for equivalent term sets: %q vs %q", got, want)
	}
	if got != "coingecko|ai,dog,wif" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSearchKey(t *testing.T) {
	if SearchKey("  WiF ") != "wif" {
		t.Fatalf("search key must trim and lowercase")
	}
}
