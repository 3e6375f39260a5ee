package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AccessDecisions     *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	SchedulerRuns       *prometheus.CounterVec
}

// New creates a registry with the process and Go collectors plus the
// application metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "internhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "internhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AccessDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "internhub_access_decisions_total",
				Help: "Access gate outcomes",
			},
			[]string{"outcome"},
		),
		NotificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "internhub_notifications_total",
				Help: "Notifications created, by result",
			},
			[]string{"result"},
		),
		SchedulerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "internhub_scheduler_runs_total",
				Help: "Background job runs, by job and result",
			},
			[]string{"job", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AccessDecisions,
		m.NotificationsSent,
		m.SchedulerRuns,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware records count and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Observe helpers tolerate a nil receiver so components work without metrics

// AccessDecision counts one gate outcome
func (m *Metrics) AccessDecision(outcome string) {
	if m != nil {
		m.AccessDecisions.WithLabelValues(outcome).Inc()
	}
}

// NotificationResult counts one created or failed notification
func (m *Metrics) NotificationResult(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.NotificationsSent.WithLabelValues(result).Inc()
}

// SchedulerRun counts one background job run
func (m *Metrics) SchedulerRun(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SchedulerRuns.WithLabelValues(job, result).Inc()
}
