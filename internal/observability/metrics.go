// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the feature pipeline.
type Metrics struct {
	// Resolution metrics
	EntitiesResolved prometheus.Counter
	EntitiesDropped  *prometheus.CounterVec

	// Aggregation metrics
	RecordsSkipped  prometheus.Counter
	FeaturesEmitted prometheus.Counter

	// Run metrics
	RunsTotal   prometheus.Counter
	RunDuration prometheus.Histogram
}

// NewMetrics creates a Metrics instance with all metrics registered on
// the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "churn_feature_lab"
	}

	return &Metrics{
		EntitiesResolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "entities_resolved_total",
			Help:      "Total number of entities resolved and emitted",
		}),
		EntitiesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "entities_dropped_total",
			Help:      "Total number of entities excluded from output by reason",
		}, []string{"reason"}),
		RecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "records_skipped_total",
			Help:      "Total number of child records skipped for malformed fields",
		}),
		FeaturesEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "features_emitted_total",
			Help:      "Total number of feature records emitted",
		}),
		RunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of completed pipeline runs",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full pipeline run",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
