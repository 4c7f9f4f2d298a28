package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the pipeline's Prometheus metrics. It satisfies the
// fetch.Metrics interface so provider traffic is counted at the source.
type Recorder struct {
	providerCalls   *prometheus.CounterVec
	providerRetries *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	candidates      *prometheus.GaugeVec
	refreshDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "narrativeradar_provider_calls_total",
				Help: "Total number of upstream provider calls",
			},
			[]string{"provider"},
		),
		providerRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "narrativeradar_provider_retries_total",
				Help: "Total number of retried provider calls",
			},
			[]string{"provider"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "narrativeradar_cache_events_total",
				Help: "Cache hits and misses by cache name",
			},
			[]string{"cache", "event"},
		),
		candidates: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "narrativeradar_parent_candidates",
				Help: "Parent candidates produced by the last refresh per narrative",
			},
			[]string{"narrative"},
		),
		refreshDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "narrativeradar_refresh_duration_seconds",
				Help:    "Duration of narrative refresh runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"narrative"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "narrativeradar_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordProviderCall records one upstream request.
func (r *Recorder) RecordProviderCall(provider string) {
	r.providerCalls.WithLabelValues(provider).Inc()
}

// RecordProviderRetry records a retried request.
func (r *Recorder) RecordProviderRetry(provider string) {
	r.providerRetries.WithLabelValues(provider).Inc()
}

// RecordCacheEvent records a hit or miss on a named cache.
func (r *Recorder) RecordCacheEvent(cache, event string) {
	r.cacheEvents.WithLabelValues(cache, event).Inc()
}

// RecordCandidates records how many parents the last refresh produced.
func (r *Recorder) RecordCandidates(narrative string, n int) {
	r.candidates.WithLabelValues(narrative).Set(float64(n))
}

// RecordRefreshDuration records one refresh run's duration in seconds.
func (r *Recorder) RecordRefreshDuration(narrative string, seconds float64) {
	r.refreshDuration.WithLabelValues(narrative).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
