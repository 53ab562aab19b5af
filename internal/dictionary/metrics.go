package dictionary

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for dictionary persistence.
type Metrics struct {
	LoadsTotal         *prometheus.CounterVec
	ParseFailuresTotal *prometheus.CounterVec
	WritesTotal        *prometheus.CounterVec
	IODuration         *prometheus.HistogramVec
}

// NewMetrics creates and registers the dictionary metrics once per process.
//
// Metrics:
//   - dictionary_loads_total{purpose} - dictionary files read
//   - dictionary_parse_failures_total{purpose} - unparsable files degraded to empty
//   - dictionary_writes_total{purpose,result} - rewrites, result is "ok" or "error"
//   - dictionary_io_duration_seconds{purpose,op} - file read/write latency
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			LoadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dictionary_loads_total",
					Help: "Total number of dictionary files read",
				},
				[]string{"purpose"},
			),
			ParseFailuresTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dictionary_parse_failures_total",
					Help: "Total number of dictionary files that could not be parsed",
				},
				[]string{"purpose"},
			),
			WritesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dictionary_writes_total",
					Help: "Total number of dictionary rewrites",
				},
				[]string{"purpose", "result"},
			),
			IODuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "dictionary_io_duration_seconds",
					Help:    "Duration of dictionary file reads and writes in seconds",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100us to ~200ms
				},
				[]string{"purpose", "op"},
			),
		}
	})
	return globalMetrics
}
