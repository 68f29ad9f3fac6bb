package engine

import (
	"strconv"
	"strings"
	"time"
)

// connState is the five-state progression described for a connection:
// BEGIN/CONNECTED, PARSED, CONTENT, RUNNING, COMPLETE.
type connState int

const (
	connBegin connState = iota
	connParsed
	connContent
	connRunning
	connComplete
)

// Conn drives one connection's request lifecycle. It is not safe for
// concurrent use: exactly one goroutine (the connection's dispatcher) may
// call Feed/Advance at a time, which is how this package realizes the
// single-threaded cooperative scheduling model.
type Conn struct {
	state connState

	input inputBuffer
	rx    *Rx
	tx    *Tx

	dechunk dechunker

	keepAliveCount int // -1 = close immediately, 0 = no more requests after this one
	connError      *Error
	abortPipeline  bool

	recvQueue [][]byte // body bytes dispatched to the handler, in arrival order

	limits   *Limits
	logger   Logger
	metrics  MetricsRecorder
	endpoint *Endpoint // optional: used to find a host/route for the pipeline
	pipeline Pipeline

	completedCount int
}

// NewConn creates a connection bound to the given limits. logger/metrics
// may be nil, in which case discard implementations are used.
func NewConn(limits *Limits, logger Logger, metrics MetricsRecorder) *Conn {
	if limits == nil {
		limits = NewLimits()
	}
	if logger == nil {
		logger = discardLogger{}
	}
	if metrics == nil {
		metrics = discardMetrics{}
	}
	return &Conn{
		state:          connBegin,
		keepAliveCount: 1,
		limits:         limits,
		logger:         logger,
		metrics:        metrics,
	}
}

// Feed appends newly read bytes to the connection's input before the
// caller re-enters Advance. It never blocks and never parses.
func (c *Conn) Feed(p []byte) {
	c.input.append(p)
}

// Rx returns the request context of the in-flight request, or nil before
// the first request line has parsed and again once a request completes.
func (c *Conn) Rx() *Rx { return c.rx }

// Tx returns the response context of the in-flight request.
func (c *Conn) Tx() *Tx { return c.tx }

// RecvQueue returns the body byte slices dispatched so far for the
// current request, in arrival order.
func (c *Conn) RecvQueue() [][]byte { return c.recvQueue }

// CompletedCount returns how many requests have fully completed on this
// connection, for pipelining assertions.
func (c *Conn) CompletedCount() int { return c.completedCount }

// Closed reports whether the connection has latched a fatal error or
// exhausted its keep-alive budget after completing a request.
func (c *Conn) Closed() bool {
	return c.connError != nil && !c.connError.recoverable()
}

// Advance runs the state machine until it cannot make further progress
// without more input, more output capacity, or a fatal error, draining
// any number of fully-buffered pipelined requests within this single
// call (the pipelining fast path: a second request already sitting in
// the input buffer completes without a further Feed). The returned bool
// is always false in the current implementation, since a call never
// returns while further progress remains possible; it is kept in the
// signature so a future caller that wants to bound per-call work can
// have the loop yield early instead of draining to exhaustion.
func (c *Conn) Advance() (canProceedWithoutMoreInput bool, err error) {
	for {
		switch c.state {
		case connBegin:
			proceed, perr := c.advanceBegin()
			if perr != nil {
				return c.handleError(perr)
			}
			if !proceed {
				return false, nil
			}
			c.state = connParsed

		case connParsed:
			if perr := c.advanceParsed(); perr != nil {
				return c.handleError(perr)
			}
			c.state = connContent

		case connContent:
			proceed, perr := c.advanceContent()
			if perr != nil {
				return c.handleError(perr)
			}
			if !proceed {
				return false, nil
			}
			c.state = connRunning

		case connRunning:
			done, perr := c.advanceRunning()
			if perr != nil {
				return c.handleError(perr)
			}
			if !done {
				return false, nil
			}
			c.state = connComplete

		case connComplete:
			more := c.advanceComplete()
			c.state = connBegin
			if !more {
				return false, nil
			}
			// Fall through without returning: a fully-buffered pipelined
			// request continues in this same call, matching the
			// "no extra event-loop round-trip" requirement.
		}
	}
}

// advanceBegin implements the BEGIN/CONNECTED state: wait for a full
// header block, then parse the request line and headers.
func (c *Conn) advanceBegin() (bool, error) {
	idx := c.input.indexHeaderTerminator()
	if idx < 0 {
		if c.limits != nil && c.input.len() >= c.limits.HeaderSize {
			return false, newLimitError(413, "header too big")
		}
		return false, nil
	}
	if c.limits != nil && idx+4 > c.limits.HeaderSize {
		return false, newLimitError(413, "header too big")
	}
	if c.endpoint != nil && !c.endpoint.AdmitBegin() {
		return false, newLimitError(503, "too many concurrent connections")
	}

	block := c.input.consumeString(idx + 4)
	block = block[:len(block)-4] // drop the terminating CRLFCRLF

	lineEnd := strings.Index(block, "\r\n")
	var startLine, headerBlock string
	if lineEnd < 0 {
		startLine, headerBlock = block, ""
	} else {
		startLine, headerBlock = block[:lineEnd], block[lineEnd+2:]
	}

	rx, err := parseRequestLine(startLine, c.limits)
	if err != nil {
		return false, err
	}
	c.rx = rx
	c.tx = newTx()
	c.tx.Ext = rx.URI.Ext

	cd, err := parseHeaders(rx, headerBlock, c.limits)
	if err != nil {
		return false, err
	}
	c.applyKeepAlive(cd)

	c.logger.Debugf("parsed request %s %s", rx.Method, rx.URI.Raw)

	rx.startedAt = time.Now()

	c.recvQueue = c.recvQueue[:0]
	c.dechunk = dechunker{}
	return true, nil
}

// applyKeepAlive folds the Connection/Keep-Alive directives observed by
// parseHeaders into the connection's keep-alive counter.
func (c *Conn) applyKeepAlive(cd connectionDirectives) {
	switch {
	case cd.sawClose:
		c.keepAliveCount = -1
	case c.rx.HTTP10 && !cd.sawKeepAlive:
		c.keepAliveCount = 0
	case cd.forceZero:
		c.keepAliveCount = 0
	}
}

// advanceParsed implements the PARSED state: hand the request to the
// pipeline's start hook.
func (c *Conn) advanceParsed() error {
	if c.abortPipeline {
		return nil
	}
	pl, err := c.resolvePipeline()
	if err != nil {
		return err
	}
	c.pipeline = pl
	if err := pl.start(c.rx); err != nil {
		c.abortPipeline = true
	}
	return nil
}

// resolvePipeline picks the pipeline to run for the in-flight request. An
// unmatched Host header under named-vhost mode is a 404, not a silent
// dispatch against the fallback host's routes: MatchHost's fallback host
// exists only so error rendering has somewhere to look, per httpMatchHost.
func (c *Conn) resolvePipeline() (Pipeline, error) {
	if c.endpoint == nil {
		return noopPipeline{}, nil
	}
	host, matched := c.endpoint.MatchHost(c.rx.Host)
	if !matched && c.endpoint.NamedVirtualHosts {
		return nil, newProtocolError(404, "no host matches request")
	}
	if host == nil {
		return noopPipeline{}, nil
	}
	route := host.match(c.rx.URI.PathInfo, c.rx.MethodFlags)
	if route == nil || route.Handler == nil {
		return noopPipeline{}, nil
	}
	return route.Handler, nil
}

// BindEndpoint attaches the endpoint this connection was accepted on, so
// the state machine can resolve a host/route for incoming requests.
func (c *Conn) BindEndpoint(e *Endpoint) { c.endpoint = e }

// advanceContent implements the CONTENT state: drain as much body data as
// is currently buffered, dispatching it to recvQueue, until the body is
// complete or more input is required.
func (c *Conn) advanceContent() (bool, error) {
	if c.rx.Chunked {
		data, eof, canProceed, err := c.dechunk.feed(&c.input)
		if err != nil {
			return false, err
		}
		if len(data) > 0 {
			c.recvQueue = append(c.recvQueue, data)
		}
		if !canProceed {
			return false, nil
		}
		if eof {
			c.rx.EOF = true
			return true, nil
		}
		return false, nil
	}

	if c.rx.Remaining < 0 {
		// HTTP/1.0 body-to-close: consume everything buffered; true EOF
		// is signaled by the caller closing the connection, out of scope
		// for this in-memory state machine.
		if c.input.len() > 0 {
			c.recvQueue = append(c.recvQueue, []byte(c.input.consumeString(c.input.len())))
		}
		return false, nil
	}

	for c.rx.Remaining > 0 && c.input.len() > 0 {
		take := c.rx.Remaining
		if int64(c.input.len()) < take {
			take = int64(c.input.len())
		}
		chunk := c.input.consumeString(int(take))
		c.recvQueue = append(c.recvQueue, []byte(chunk))
		c.rx.Remaining -= take
		c.rx.Received += take
	}
	if c.rx.Remaining > 0 {
		return false, nil
	}
	c.rx.EOF = true
	return true, nil
}

// advanceRunning implements the RUNNING state: drive the pipeline until
// it reports completion or the connection has errored.
func (c *Conn) advanceRunning() (bool, error) {
	if c.abortPipeline || c.pipeline == nil {
		return true, nil
	}
	if !c.pipeline.writable() {
		return false, nil
	}
	done, err := c.pipeline.process(c.rx)
	if err != nil {
		return false, err
	}
	return done, nil
}

// advanceComplete implements the COMPLETE state: finalize the pipeline,
// discard the Rx, and report whether a pipelined follow-on request is
// already fully buffered.
func (c *Conn) advanceComplete() bool {
	if c.pipeline != nil {
		c.pipeline.finalize(c.rx, c.abortPipeline)
	}
	c.recordCompletion()
	c.pipeline = nil
	c.abortPipeline = false
	c.completedCount++
	c.rx = nil
	c.tx = nil

	if c.keepAliveCount <= 0 {
		c.connError = newIOError("connection: close requested")
		return false
	}
	return c.input.indexHeaderTerminator() >= 0
}

// recordCompletion reports the just-finished request's duration and
// status class through the connection's MetricsRecorder.
func (c *Conn) recordCompletion() {
	if c.rx == nil {
		return
	}
	addr := ""
	if c.endpoint != nil {
		addr = c.endpoint.Addr()
	}
	status := 200
	if c.tx != nil && c.tx.Status != 0 {
		status = c.tx.Status
	}
	class := strconv.Itoa(status/100) + "xx"
	c.metrics.RequestCompleted(addr, class, time.Since(c.rx.startedAt))
}

// handleError applies the error taxonomy's propagation policy:
// recoverable errors abort only the in-flight request, fatal ones latch
// connError and stop the machine.
func (c *Conn) handleError(err error) (bool, error) {
	e, ok := err.(*Error)
	if !ok {
		e = newIOError(err.Error())
	}
	c.connError = e
	c.logger.Warnf("connection error: %v", e)
	if e.recoverable() {
		c.abortPipeline = true
		if c.pipeline != nil {
			c.pipeline.finalize(c.rx, true)
			c.pipeline = nil
		}
		c.rx = nil
		c.tx = nil
		c.state = connBegin
		c.connError = nil
		return false, e
	}
	return false, e
}
