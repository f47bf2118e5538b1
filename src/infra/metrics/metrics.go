package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transições do grafo de conexões, por operação e resultado (ok ou o código do erro).
	ConnectionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connection_operations_total",
			Help: "Total number of connection state machine operations",
		},
		[]string{"operation", "outcome"},
	)

	// Aceites em que a aresta reversa não foi gravada depois da primeira escrita.
	ConnectionPartialWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "connection_partial_writes_total",
			Help: "Accepts whose reverse edge write failed after the inbound edge was already connected",
		},
	)

	EnrichmentDroppedEdges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connection_enrichment_dropped_total",
			Help: "Edges dropped from list views because the counterpart profile could not be resolved",
		},
		[]string{"view"},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connection_notification_failures_total",
			Help: "Best-effort side effects that failed",
		},
		[]string{"event_type"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Profile cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
