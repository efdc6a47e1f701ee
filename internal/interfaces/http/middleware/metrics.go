// Package middleware provides HTTP middleware for the ordering engine.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics holds the Prometheus instruments for the HTTP surface and
// the submission pipeline.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
	activeRequests         prometheus.Gauge

	submissionsTotal *prometheus.CounterVec
}

// NewHTTPMetrics creates the metric instruments on a private registry
func NewHTTPMetrics() *HTTPMetrics {
	registry := prometheus.NewRegistry()

	m := &HTTPMetrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_server_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		requestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_server_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_server_active_requests",
				Help: "Number of in-flight HTTP requests.",
			},
		),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_submissions_total",
				Help: "Order submissions by origin (remote or local).",
			},
			[]string{"origin"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDurationSeconds,
		m.activeRequests,
		m.submissionsTotal,
	)
	return m
}

// Middleware instruments every request passing through the engine
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.activeRequests.Inc()

		c.Next()

		m.activeRequests.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(method, route, status).Inc()
		m.requestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordSubmission counts a completed order submission by origin
func (m *HTTPMetrics) RecordSubmission(origin string) {
	m.submissionsTotal.WithLabelValues(origin).Inc()
}

// Handler exposes the /metrics scrape endpoint
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Registry returns the underlying registry (for testing)
func (m *HTTPMetrics) Registry() *prometheus.Registry {
	return m.registry
}
