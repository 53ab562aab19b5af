package lookup

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for lookups and mutations.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	MutationsTotal *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	EventsTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers lookup metrics once per process.
//
// Metrics:
//   - lookup_requests_total{purpose,result} - resolves by outcome (exact, fuzzy, empty, not_found, error)
//   - lookup_mutations_total{purpose,op,result} - dictionary mutations by outcome
//   - lookup_duration_seconds{purpose} - resolve latency
//   - lookup_events_total{kind,result} - change notifications (ok, error)
//
// Recipes and mods are reported under purpose "recipes" and "mods".
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "lookup_requests_total",
					Help: "Total number of lookups by purpose and result",
				},
				[]string{"purpose", "result"},
			),
			MutationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "lookup_mutations_total",
					Help: "Total number of dictionary mutations by purpose, operation and result",
				},
				[]string{"purpose", "op", "result"},
			),
			Duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "lookup_duration_seconds",
					Help:    "Duration of lookups in seconds",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
				},
				[]string{"purpose"},
			),
			EventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "lookup_events_total",
					Help: "Total number of change notifications by kind and result",
				},
				[]string{"kind", "result"},
			),
		}
	})
	return globalMetrics
}
