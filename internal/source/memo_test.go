package source

import (
	"testing"
	"time"
)

// Pins the memoization windows used when configuration leaves them unset:
// a raw window much longer than a minute would keep a provider outage's
// fallback rows alive across many refreshes.
func TestDefaultMemoWindows(t *testing.T) {
	if DefaultRawTTL != time.Minute {
		t.Fatalf("raw memoization window changed: %v", DefaultRawTTL)
	}
	if DefaultSearchTTL != 15*time.Minute {
		t.Fatalf("search memoization window changed: %v", DefaultSearchTTL)
	}
}
