// Package engine implements the request-processing core of an embedded
// HTTP/1.x server: the per-connection state machine, the HTTP/1.x message
// parser, and the endpoint/host/route dispatch layer that sits in front of
// it. The package depends only on small capability interfaces (Pipeline,
// Logger, MetricsRecorder) for its collaborators; concrete implementations
// of those interfaces live in sibling internal packages.
package engine
