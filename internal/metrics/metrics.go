package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the sync service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Sync Metrics
	SyncPassesTotal     prometheus.CounterVec
	SyncPassDuration    prometheus.HistogramVec
	EntitiesSyncedTotal prometheus.CounterVec
	ConflictsTotal      prometheus.CounterVec
	RetriesTotal        prometheus.CounterVec

	// Remote API Metrics
	RemoteRequestsTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "possync_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "possync_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "possync_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Sync Metrics
		SyncPassesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "possync_sync_passes_total",
				Help: "Total sync passes by sync type and outcome",
			},
			[]string{"sync_type", "outcome"},
		),
		SyncPassDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "possync_sync_pass_duration_seconds",
				Help:    "Sync pass execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"sync_type"},
		),
		EntitiesSyncedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "possync_entities_synced_total",
				Help: "Total entities written during sync passes by entity type and action",
			},
			[]string{"entity_type", "action"},
		),
		ConflictsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "possync_conflicts_total",
				Help: "Total bidirectional conflicts flagged for manual resolution",
			},
			[]string{"entity_type"},
		),
		RetriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "possync_retries_total",
				Help: "Total retry attempts scheduled by sync type",
			},
			[]string{"sync_type"},
		),

		// Remote API Metrics
		RemoteRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "possync_remote_requests_total",
				Help: "Total requests against the Square API by outcome",
			},
			[]string{"outcome"},
		),
	}
}
