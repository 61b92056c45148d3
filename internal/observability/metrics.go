package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SyncEntitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_sync_entities_total",
			Help: "Entities written or pruned by cache reconciliation",
		},
		[]string{"kind", "result"},
	)

	SyncFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_sync_failures_total",
			Help: "Cache reconciliations that were rolled back",
		},
		[]string{"kind"},
	)

	LiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_live_streams",
			Help: "Open websocket live query streams",
		},
	)
)

// RecordSync accounts one finished reconciliation of kind.
func RecordSync(kind string, upserted, deleted int, err error) {
	if err != nil {
		SyncFailuresTotal.WithLabelValues(kind).Inc()
		return
	}
	SyncEntitiesTotal.WithLabelValues(kind, "upserted").Add(float64(upserted))
	SyncEntitiesTotal.WithLabelValues(kind, "deleted").Add(float64(deleted))
}
