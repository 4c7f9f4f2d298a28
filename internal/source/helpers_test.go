package source

import (
	"context"
	"testing"
	"time"

	"NarrativeRadar/internal/service/fetch"
	"NarrativeRadar/internal/service/ratelimit"
	xhttp "NarrativeRadar/pkg/http"
	"NarrativeRadar/pkg/logger"
)

// newTestFetcher builds a fetcher that never sleeps and never rate-limits,
// so provider tests run instantly.
func newTestFetcher(t *testing.T, provider string) *fetch.Fetcher {
	t.Helper()
	f := fetch.New(fetch.Config{
		Provider:    provider,
		RPS:         10000,
		Burst:       10000,
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
	}, xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), ratelimit.New(), logger.Nop())
	f.SetSleep(func(context.Context, time.Duration) error { return nil })
	f.SetJitter(func() time.Duration { return 0 })
	return f
}

func noSleep(context.Context, time.Duration) error { return nil }
