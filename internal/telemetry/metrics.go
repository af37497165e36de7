// Package telemetry holds the Prometheus collectors of the gateway.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTPRequestDuration tracks HTTP request latency.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "hajimi",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// AuthEvents counts audit events by operation and level.
var AuthEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hajimi",
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Authentication audit events by action and level.",
	},
	[]string{"action", "level"},
)

// AuditDropped counts audit events dropped because the async buffer was full.
var AuditDropped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hajimi",
		Subsystem: "audit",
		Name:      "dropped_total",
		Help:      "Audit events dropped because the delivery buffer was full.",
	},
)

// NewMetricsRegistry creates a Prometheus registry with default and gateway collectors.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		AuthEvents,
		AuditDropped,
	)
	return reg
}
