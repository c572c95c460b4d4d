package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and domain metrics of the service.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec   // by method, route, status
	RequestDuration    *prometheus.HistogramVec // by method, route
	RequestsInProgress prometheus.Gauge

	StringsCreated     prometheus.Counter
	DuplicatesRejected prometheus.Counter
	StringsDeleted     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics registers every metric, plus Go runtime and process collectors,
// on a fresh registry.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served",
		}),
		StringsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strings_created_total",
			Help: "Strings analyzed and stored",
		}),
		DuplicatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strings_duplicates_rejected_total",
			Help: "Create requests rejected because the content hash already exists",
		}),
		StringsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strings_deleted_total",
			Help: "Strings deleted",
		}),
		registry: reg,
	}

	for _, c := range []prometheus.Collector{
		m.RequestsTotal, m.RequestDuration, m.RequestsInProgress,
		m.StringsCreated, m.DuplicatesRejected, m.StringsDeleted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) StringCreated()     { m.StringsCreated.Inc() }
func (m *Metrics) DuplicateRejected() { m.DuplicatesRejected.Inc() }
func (m *Metrics) StringDeleted()     { m.StringsDeleted.Inc() }

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware tracks request metrics. The route label is the chi pattern so
// values embedded in paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsInProgress.Inc()
		defer m.RequestsInProgress.Dec()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
