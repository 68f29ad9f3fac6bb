package engine

// Pipeline is the capability set the connection state machine depends on
// to drive a request through a handler. The state machine never inspects
// what a Pipeline does internally; it only calls these four methods at the
// transition points described by the connection state machine.
//
// start is invoked on entry to PARSED, once the request line and headers
// have validated successfully. process is invoked repeatedly while the
// connection is RUNNING, once per available input or output opportunity.
// writable reports whether the handler is ready to accept another output
// tick without blocking. finalize is invoked exactly once per resolved
// pipeline: on transition into COMPLETE (with abort set if start failed),
// or with abort set when an error ends the request before COMPLETE.
type Pipeline interface {
	start(rx *Rx) error
	process(rx *Rx) (done bool, err error)
	writable() bool
	finalize(rx *Rx, abort bool)
}

// noopPipeline is the Pipeline used when a route has no handler wired.
// It always reports completion without consuming or producing anything,
// matching the "handler not implemented" branch of executeExchan.
type noopPipeline struct{}

func (noopPipeline) start(rx *Rx) error                     { return nil }
func (noopPipeline) process(rx *Rx) (bool, error)           { return true, nil }
func (noopPipeline) writable() bool                         { return true }
func (noopPipeline) finalize(rx *Rx, abort bool)            {}
