package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Resolution pipeline metrics
	StageTotal           *prometheus.CounterVec
	StageDurationSeconds *prometheus.HistogramVec
	ResolutionTotal      *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Generic fallback race metrics
	ProviderRaceTotal *prometheus.CounterVec

	// Semantic index metrics
	IndexUpsertsTotal *prometheus.CounterVec

	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// Backup metrics
	BackupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		StageTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_stage_total",
				Help: "Total resolution stage executions by stage and status",
			},
			[]string{"stage", "status"}, // status: hit, empty, error, timeout
		),

		StageDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "janseva_stage_duration_seconds",
				Help:    "Resolution stage duration in seconds by stage",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"stage"},
		),

		ResolutionTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_resolution_total",
				Help: "Total completed resolutions by provenance",
			},
			[]string{"provenance"}, // index-high, index-broad, live, generic, exhausted
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_cache_hits_total",
				Help: "Total cache hits by layer",
			},
			[]string{"layer"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_cache_misses_total",
				Help: "Total cache misses by layer",
			},
			[]string{"layer"},
		),

		ProviderRaceTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_provider_race_total",
				Help: "Generic fallback provider race outcomes by provider and outcome",
			},
			[]string{"provider", "outcome"}, // outcome: won, lost, rejected, error
		),

		IndexUpsertsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_index_upserts_total",
				Help: "Semantic index upserts fed back from live discovery by status",
			},
			[]string{"status"}, // success, error
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_webhook_requests_total",
				Help: "Total webhook requests by event type and status",
			},
			[]string{"event_type", "status"},
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "janseva_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"event_type"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_ratelimit_dropped_total",
				Help: "Requests dropped by the per-user rate limiter",
			},
			[]string{"scope"},
		),

		BackupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "janseva_backup_total",
				Help: "Profile database backup attempts by status",
			},
			[]string{"status"}, // success, error
		),
	}
}

// RecordStage records one stage execution with its outcome and duration.
func (m *Metrics) RecordStage(stage, status string, start time.Time) {
	if m == nil {
		return
	}
	m.StageTotal.WithLabelValues(stage, status).Inc()
	m.StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordResolution records a completed resolution by provenance.
func (m *Metrics) RecordResolution(provenance string) {
	if m == nil {
		return
	}
	m.ResolutionTotal.WithLabelValues(provenance).Inc()
}

// RecordCacheHit records a cache hit for the given layer.
func (m *Metrics) RecordCacheHit(layer string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(layer).Inc()
}

// RecordCacheMiss records a cache miss for the given layer.
func (m *Metrics) RecordCacheMiss(layer string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(layer).Inc()
}

// RecordProviderRace records one provider's outcome in the fallback race.
func (m *Metrics) RecordProviderRace(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderRaceTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordIndexUpsert records an index upsert attempt.
func (m *Metrics) RecordIndexUpsert(status string) {
	if m == nil {
		return
	}
	m.IndexUpsertsTotal.WithLabelValues(status).Inc()
}

// RecordWebhook records a webhook request with duration.
func (m *Metrics) RecordWebhook(eventType, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	if duration > 0 {
		m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration.Seconds())
	}
}

// RecordRateLimitDrop records a dropped request for the given scope.
func (m *Metrics) RecordRateLimitDrop(scope string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(scope).Inc()
}

// RecordBackup records a backup attempt.
func (m *Metrics) RecordBackup(status string) {
	if m == nil {
		return
	}
	m.BackupTotal.WithLabelValues(status).Inc()
}
