// Package observability exposes Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgerrors "grapheditor/pkg/errors"
)

// Collector holds all Prometheus metrics for the editor
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Editor metrics
	Operations      *prometheus.CounterVec
	OperationTime   *prometheus.HistogramVec
	ActiveSessions  prometheus.Gauge
	HistoryDepth    prometheus.Histogram
	StaleReferences prometheus.Counter

	// Websocket metrics
	WSConnections prometheus.Gauge
}

// NewCollector creates a collector on its own registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Editor operations by outcome",
		}, []string{"operation", "outcome"}),
		OperationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Editor operation duration in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live editing sessions",
		}),
		HistoryDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Snapshots stored in a session history after an edit",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		StaleReferences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_selection_references_total",
			Help:      "Selection entries dropped because their element no longer exists",
		}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open websocket connections",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Operations,
		c.OperationTime,
		c.ActiveSessions,
		c.HistoryDepth,
		c.StaleReferences,
		c.WSConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the collector registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveOperation implements ports.Metrics
func (c *Collector) ObserveOperation(operation string, duration time.Duration, err error) {
	c.Operations.WithLabelValues(operation, outcome(err)).Inc()
	c.OperationTime.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetActiveSessions implements ports.Metrics
func (c *Collector) SetActiveSessions(n int) {
	c.ActiveSessions.Set(float64(n))
}

// ObserveHistoryDepth implements ports.Metrics
func (c *Collector) ObserveHistoryDepth(depth int) {
	c.HistoryDepth.Observe(float64(depth))
}

// IncStaleReferences implements ports.Metrics
func (c *Collector) IncStaleReferences(n int) {
	c.StaleReferences.Add(float64(n))
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ConnectionOpened counts an accepted websocket
func (c *Collector) ConnectionOpened() {
	c.WSConnections.Inc()
}

// ConnectionClosed counts a closed websocket
func (c *Collector) ConnectionClosed() {
	c.WSConnections.Dec()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return string(appErr.Type)
	}
	return "error"
}
