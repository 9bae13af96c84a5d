// Package metrics records per-route request metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the request metrics and the registry they live in. It
// satisfies router.Recorder.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
}

// NewManager creates a metrics manager. Each manager has its own registry
// unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "api",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Name:        "requests_total",
			Help:        "Total number of dispatched requests by route, method and status",
			ConstLabels: m.constLabels,
		},
		[]string{"route", "method", "status_code"},
	)

	m.requestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Name:        "request_duration_milliseconds",
			Help:        "Request dispatch duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"route", "method"},
	)

	m.errors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Name:        "request_errors_total",
			Help:        "Requests answered with an error envelope, by status class",
			ConstLabels: m.constLabels,
		},
		[]string{"route", "class"},
	)
}

// Observe records one dispatched request
func (m *Manager) Observe(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(float64(duration.Microseconds()) / 1000)

	if status >= http.StatusBadRequest {
		m.errors.WithLabelValues(route, statusClass(status)).Inc()
	}
}

// Registry returns the registry holding the metrics
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the metrics in the Prometheus text format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "ok"
	}
}
