// Package metrics provides Prometheus instrumentation.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors used by the HTTP layer and the domain recorders.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	importRows  *prometheus.CounterVec
	importJobs  *prometheus.CounterVec
	callsLogged *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers all collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_inflight_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadcall_import_rows_total",
				Help: "Import rows by outcome (imported, duplicate, invalid, failed)",
			},
			[]string{"outcome"},
		),
		importJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadcall_import_jobs_total",
				Help: "Queued file imports by terminal status",
			},
			[]string{"status"},
		),
		callsLogged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadcall_calls_logged_total",
				Help: "Logged calls by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Middleware records request counts, latencies and in-flight requests.
// The matched route template is used as label to keep cardinality low.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.httpRequestsTotal.With(labels).Inc()
		m.httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// AddImportRows counts reconciled rows for one outcome.
func (m *Metrics) AddImportRows(outcome string, n int) {
	if n <= 0 {
		return
	}
	m.importRows.WithLabelValues(outcome).Add(float64(n))
}

// IncImportJob counts a finished file import.
func (m *Metrics) IncImportJob(status string) {
	m.importJobs.WithLabelValues(status).Inc()
}

// IncCallLogged counts a logged call.
func (m *Metrics) IncCallLogged(outcome string) {
	m.callsLogged.WithLabelValues(outcome).Inc()
}
