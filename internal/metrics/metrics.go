// Package metrics exposes Prometheus instrumentation for the transport
// service. Collectors register on the default registry and are served by
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_http_requests_total",
		Help: "HTTP requests handled, by method, path and status code.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes end-to-end request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transport_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// TripsScheduled counts successfully committed trips.
	TripsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transport_trips_scheduled_total",
		Help: "Trips scheduled successfully.",
	})

	// SchedulingRejections counts rejected scheduling attempts by error kind.
	SchedulingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_scheduling_rejections_total",
		Help: "Scheduling attempts rejected, by error kind.",
	}, []string{"kind"})

	// LockTimeouts counts per-entity lock acquisitions that timed out.
	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transport_lock_timeouts_total",
		Help: "Entity lock acquisitions that timed out.",
	})
)
