package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	defaultMetrics     *HTTPMetrics
	defaultMetricsOnce sync.Once
)

// HTTPMetrics holds all HTTP-related metrics.
type HTTPMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestDur     *prometheus.HistogramVec
	responseSize   *prometheus.HistogramVec
	activeRequests prometheus.Gauge
}

// NewHTTPMetrics creates HTTP metrics registered with reg.
//
// Metrics:
//   - http_requests_total{method,endpoint,status}
//   - http_request_duration_seconds{method,endpoint,status}
//   - http_response_size_bytes{method,endpoint,status}
//   - http_active_requests
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	labels := []string{"method", "endpoint", "status"}

	return &HTTPMetrics{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests labeled by method, route template and status code",
			},
			labels,
		),
		requestDur: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			labels,
		),
		responseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response body size in bytes",
				Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
			},
			labels,
		),
		activeRequests: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of currently active HTTP requests",
			},
		),
	}
}

// defaultHTTPMetrics registers with the default registry once per process.
func defaultHTTPMetrics() *HTTPMetrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewHTTPMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// MetricsMiddleware returns an Echo middleware that records HTTP metrics.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			m.activeRequests.Inc()
			defer m.activeRequests.Dec()

			err := next(c)
			if err != nil {
				// Let echo render the error now so the status is final.
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			labels := []string{c.Request().Method, normalizePath(c.Path()), status}

			m.requestsTotal.WithLabelValues(labels...).Inc()
			m.requestDur.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			m.responseSize.WithLabelValues(labels...).Observe(float64(c.Response().Size))

			return nil
		}
	}
}

// normalizePath maps the matched route to a metric label. c.Path() is the
// route template (/api/v1/guilds/:guild/:purpose), so guild IDs never reach
// the label; unmatched requests get a single bucket.
func normalizePath(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
