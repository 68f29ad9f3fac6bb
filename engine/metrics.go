package engine

import "time"

// MetricsRecorder is the metrics capability an Endpoint reports through.
// The concrete Prometheus-backed implementation lives under
// internal/metrics; this package depends only on the interface.
type MetricsRecorder interface {
	ConnOpened(endpointAddr string)
	ConnClosed(endpointAddr string)
	RequestCompleted(endpointAddr string, statusClass string, duration time.Duration)
}

// discardMetrics is the MetricsRecorder used when a Service is constructed
// without one.
type discardMetrics struct{}

func (discardMetrics) ConnOpened(string)                               {}
func (discardMetrics) ConnClosed(string)                               {}
func (discardMetrics) RequestCompleted(string, string, time.Duration) {}
