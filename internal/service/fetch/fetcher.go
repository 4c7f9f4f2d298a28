package fetch

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"NarrativeRadar/internal/service/ratelimit"
	xhttp "NarrativeRadar/pkg/http"
	"NarrativeRadar/pkg/logger"
)

// Metrics is the slice of the metrics recorder the fetcher needs.
type Metrics interface {
	RecordProviderCall(provider string)
	RecordProviderRetry(provider string)
}

type noopMetrics struct{}

func (noopMetrics) RecordProviderCall(string)  {}
func (noopMetrics) RecordProviderRetry(string) {}

// Config bounds one provider's outbound traffic.
type Config struct {
	Provider    string  // limiter key and metrics label
	RPS         float64 // sustained requests per second
	Burst       float64 // token bucket capacity
	MaxAttempts int
	BaseDelay   time.Duration // backoff base
	MaxBackoff  time.Duration
}

// Fetcher issues rate-limited GET-for-JSON calls with retry. Transient
// upstream trouble (429, 5xx, transport errors, bad JSON) never surfaces as
// an error: after the attempts are exhausted the call reports ok=false and
// callers treat that the same as "no data".
type Fetcher struct {
	cfg     Config
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
	metrics Metrics
	sleep   func(context.Context, time.Duration) error
	jitter  func() time.Duration
}

func New(cfg Config, client *xhttp.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Fetcher {
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 800 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Fetcher{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		log:     log,
		metrics: noopMetrics{},
		sleep:   sleepCtx,
		jitter:  func() time.Duration { return time.Duration(rand.Int63n(int64(300 * time.Millisecond))) },
	}
}

// SetMetrics attaches a metrics recorder.
func (f *Fetcher) SetMetrics(m Metrics) {
	if m != nil {
		f.metrics = m
	}
}

// SetSleep replaces the backoff sleep for deterministic tests.
func (f *Fetcher) SetSleep(sleep func(context.Context, time.Duration) error) { f.sleep = sleep }

// SetJitter replaces the backoff jitter source.
func (f *Fetcher) SetJitter(jitter func() time.Duration) { f.jitter = jitter }

// GetJSON fetches rawURL with params and decodes the body into dest.
// It reports ok=false after all attempts are exhausted.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, params url.Values, dest interface{}) bool {
	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		if err := f.limiter.Acquire(ctx, f.cfg.Provider, f.cfg.RPS, f.cfg.Burst); err != nil {
			f.log.Debug("fetch aborted while rate limited",
				logger.String("provider", f.cfg.Provider), logger.Error(err))
			return false
		}
		f.metrics.RecordProviderCall(f.cfg.Provider)

		retry, ok := f.attempt(ctx, rawURL, params, dest, attempt)
		if ok {
			return true
		}
		if !retry {
			return false
		}
		f.metrics.RecordProviderRetry(f.cfg.Provider)
	}

	f.log.Warn("all fetch attempts failed",
		logger.String("provider", f.cfg.Provider),
		logger.String("url", rawURL),
		logger.Int("attempts", f.cfg.MaxAttempts))
	return false
}

// attempt performs one request. It reports whether the caller should retry
// and whether dest was populated.
func (f *Fetcher) attempt(ctx context.Context, rawURL string, params url.Values, dest interface{}, attempt int) (retry, ok bool) {
	last := attempt == f.cfg.MaxAttempts-1

	resp, err := f.client.Get(ctx, rawURL, params)
	if err != nil {
		f.log.Debug("fetch attempt failed",
			logger.String("provider", f.cfg.Provider),
			logger.Int("attempt", attempt+1),
			logger.Error(err))
		if !last {
			f.backoff(ctx, attempt)
		}
		return !last, false
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		if last {
			return false, false
		}
		if after, parsed := retryAfterSeconds(resp.Header); parsed {
			f.log.Debug("rate limited, honoring Retry-After",
				logger.String("provider", f.cfg.Provider), logger.Int("seconds", after))
			_ = f.sleep(ctx, time.Duration(after)*time.Second)
		} else {
			f.backoff(ctx, attempt)
		}
		return true, false

	case resp.StatusCode >= 500:
		resp.Body.Close()
		if last {
			return false, false
		}
		f.log.Debug("server error, backing off",
			logger.String("provider", f.cfg.Provider), logger.Int("status", resp.StatusCode))
		f.backoff(ctx, attempt)
		return true, false

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// 4xx other than 429 is not transient
		resp.Body.Close()
		f.log.Debug("non-retryable status",
			logger.String("provider", f.cfg.Provider), logger.Int("status", resp.StatusCode))
		return false, false
	}

	if err := xhttp.DecodeJSON(resp, dest); err != nil {
		// malformed body counts as an empty result at the parse point
		f.log.Debug("malformed response",
			logger.String("provider", f.cfg.Provider), logger.Error(err))
		if !last {
			f.backoff(ctx, attempt)
		}
		return !last, false
	}

	return false, true
}

func (f *Fetcher) backoff(ctx context.Context, attempt int) {
	d := f.cfg.BaseDelay*(1<<uint(attempt)) + f.jitter()
	if d > f.cfg.MaxBackoff {
		d = f.cfg.MaxBackoff
	}
	_ = f.sleep(ctx, d)
}

// retryAfterSeconds parses a Retry-After header as whole seconds.
func retryAfterSeconds(h http.Header) (int, bool) {
	raw := h.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
