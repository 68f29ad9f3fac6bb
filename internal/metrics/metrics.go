// Package metrics provides the concrete MetricsRecorder implementation
// the engine package's MetricsRecorder interface is satisfied by, backed
// by github.com/prometheus/client_golang.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry collects the counters, gauges and histograms an Endpoint
// reports through as connections open, close, and complete requests.
type Registry struct {
	reg *prometheus.Registry

	connectionsTotal  *prometheus.CounterVec
	connectionsActive *prometheus.GaugeVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewRegistry creates a Registry and registers its collectors with a
// fresh prometheus.Registry. Use Gatherer to expose it on a metrics
// endpoint.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.connectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connections_total",
		Help: "Total connections accepted, by endpoint address.",
	}, []string{"endpoint"})

	r.connectionsActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "connections_active",
		Help: "Connections currently open, by endpoint address.",
	}, []string{"endpoint"})

	r.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requests_total",
		Help: "Requests completed, by endpoint address and status class.",
	}, []string{"endpoint", "status_class"})

	r.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "Request duration from PARSED to COMPLETE, by endpoint address.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	r.reg.MustRegister(r.connectionsTotal, r.connectionsActive, r.requestsTotal, r.requestDuration)
	return r
}

// Gatherer exposes the underlying prometheus.Registry for wiring into an
// HTTP handler (e.g. promhttp.HandlerFor).
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) ConnOpened(endpointAddr string) {
	r.connectionsTotal.WithLabelValues(endpointAddr).Inc()
	r.connectionsActive.WithLabelValues(endpointAddr).Inc()
}

func (r *Registry) ConnClosed(endpointAddr string) {
	r.connectionsActive.WithLabelValues(endpointAddr).Dec()
}

func (r *Registry) RequestCompleted(endpointAddr, statusClass string, duration time.Duration) {
	r.requestsTotal.WithLabelValues(endpointAddr, statusClass).Inc()
	r.requestDuration.WithLabelValues(endpointAddr).Observe(duration.Seconds())
}
