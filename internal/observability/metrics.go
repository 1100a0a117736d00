package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driverquote_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "driverquote_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ContactsSubmitted counts accepted quote requests by insurance type.
	ContactsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driverquote_contacts_submitted_total",
		Help: "Total number of accepted contact requests by insurance type",
	}, []string{"type_assurance"})

	// ValidationFailures counts rejected submissions by offending field.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driverquote_contact_validation_failures_total",
		Help: "Total number of field validation failures on contact submission",
	}, []string{"field"})

	// StatusTransitions counts lifecycle changes by target status.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driverquote_contact_status_transitions_total",
		Help: "Total number of contact status changes by target status",
	}, []string{"status"})

	// CacheLookups counts contact cache lookups by result (hit, miss, error, stale).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driverquote_cache_lookups_total",
		Help: "Total number of contact cache lookups by result",
	}, []string{"result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
