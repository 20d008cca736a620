// Package metrics exposes Prometheus collectors for the dashboard server and
// its pick store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.runtime = true
	}
}

// Manager owns a private registry and the dashboard collectors.
type Manager struct {
	namespace string
	buckets   []float64
	runtime   bool
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	storeFetchDuration *prometheus.HistogramVec
	storeFetchErrors   *prometheus.CounterVec

	picksLoaded  *prometheus.GaugeVec
	pageRenders  *prometheus.CounterVec
	renderErrors prometheus.Counter
}

// NewManager creates a manager on a fresh registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "picks_dashboard",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	m.storeFetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "store_fetch_duration_seconds",
		Help:      "Pick store query latency in seconds",
		Buckets:   m.buckets,
	}, []string{"operation"})

	m.storeFetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "store_fetch_errors_total",
		Help:      "Total number of failed pick store queries",
	}, []string{"operation"})

	m.picksLoaded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "dashboard_picks_loaded",
		Help:      "Number of records in the last dashboard load by set (daily, historical)",
	}, []string{"set"})

	m.pageRenders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "dashboard_renders_total",
		Help:      "Total number of dashboard loads by dimension",
	}, []string{"dimension"})

	m.renderErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "template_render_errors_total",
		Help:      "Total number of template execution failures",
	})
}

// Registry returns the manager's registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch records one pick store query.
func (m *Manager) ObserveFetch(operation string, duration time.Duration, err error) {
	m.storeFetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.storeFetchErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Manager) ObserveRequest(route, method string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// SetPicksLoaded records the size of a loaded record set.
func (m *Manager) SetPicksLoaded(set string, count int) {
	m.picksLoaded.WithLabelValues(set).Set(float64(count))
}

// IncDashboardRender counts a dashboard load for a dimension.
func (m *Manager) IncDashboardRender(dimension string) {
	m.pageRenders.WithLabelValues(dimension).Inc()
}

// IncRenderError counts a failed template execution.
func (m *Manager) IncRenderError() {
	m.renderErrors.Inc()
}
