// Package metrics holds the Prometheus instruments of the viewer service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry and the instruments on it.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SessionsOpen     prometheus.Gauge
	GesturesTotal    *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec
	ExportsTotal     prometheus.Counter
	CatalogEvents    *prometheus.CounterVec
	CatalogDiagrams  prometheus.Gauge
}

// NewRegistry creates a registry with every instrument initialised plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	f := promauto.With(reg)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.SessionsOpen = f.NewGauge(prometheus.GaugeOpts{
		Name: "archview_sessions_open",
		Help: "Number of open viewer sessions",
	})
	r.GesturesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archview_gestures_total",
			Help: "Pointer gestures started, by kind",
		},
		[]string{"kind"},
	)
	r.DiagnosticsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archview_diagnostics_total",
			Help: "Diagnostics reported while loading or manipulating diagrams, by kind",
		},
		[]string{"kind"},
	)
	r.ExportsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "archview_exports_total",
		Help: "Diagrams exported to text",
	})
	r.CatalogEvents = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archview_catalog_events_total",
			Help: "Catalog changes observed by the file watcher, by kind",
		},
		[]string{"kind"},
	)
	r.CatalogDiagrams = f.NewGauge(prometheus.GaugeOpts{
		Name: "archview_catalog_diagrams",
		Help: "Diagrams in the catalog after the last sync",
	})
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordHTTPRequest records one served request.
func (r *Registry) RecordHTTPRequest(method, route, status string, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordGesture counts a started pointer gesture.
func (r *Registry) RecordGesture(kind string) {
	r.GesturesTotal.WithLabelValues(kind).Inc()
}

// RecordDiagnostic counts one diagnostic.
func (r *Registry) RecordDiagnostic(kind string) {
	r.DiagnosticsTotal.WithLabelValues(kind).Inc()
}
