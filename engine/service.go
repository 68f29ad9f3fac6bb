package engine

import (
	"io"
	"net"
	"time"
)

// Service is the top-level object a process creates to run one or more
// endpoints. It replaces the original source's process-wide defaultHost
// singleton with an explicit, test-instantiable handle: each Service owns
// its own endpoint list and ambient collaborators.
type Service struct {
	Logger  Logger
	Metrics MetricsRecorder

	endpoints []*Endpoint
}

// NewService creates a Service with the given ambient collaborators. Nil
// arguments fall back to discard implementations, so tests can construct
// a Service with NewService(nil, nil).
func NewService(logger Logger, metrics MetricsRecorder) *Service {
	if logger == nil {
		logger = discardLogger{}
	}
	if metrics == nil {
		metrics = discardMetrics{}
	}
	return &Service{Logger: logger, Metrics: metrics}
}

// AddEndpoint registers an endpoint with this service and wires its
// ambient logger/metrics.
func (s *Service) AddEndpoint(e *Endpoint) {
	e.logger = s.Logger
	e.metrics = s.Metrics
	s.endpoints = append(s.endpoints, e)
}

// Endpoints returns the endpoints registered with this service.
func (s *Service) Endpoints() []*Endpoint {
	return s.endpoints
}

// Shutdown closes every registered endpoint's listener and tears down its
// tracked connections, causing the corresponding acceptLoop goroutines to
// return and unblocking Serve. Matches the original's endpoint-shutdown
// enumeration of the global connection list.
func (s *Service) Shutdown() error {
	var firstErr error
	for _, ep := range s.endpoints {
		if err := ep.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Serve runs the accept loop for every registered endpoint, opening a
// listener for each and spawning one dispatcher goroutine per accepted
// connection. It blocks until the first listener's Accept loop returns
// (which only happens on Shutdown or an accept error) and returns that
// loop's error; other endpoints' loops are not waited for.
//
// Each dispatcher goroutine owns exactly one Conn end-to-end: it is the
// only goroutine that ever calls Feed/Advance on that connection, which
// is how the single-threaded cooperative scheduling model described for
// this core is realized on top of Go's goroutine scheduler.
func (s *Service) Serve() error {
	errCh := make(chan error, len(s.endpoints))
	for _, ep := range s.endpoints {
		ln, err := ep.Listen()
		if err != nil {
			return err
		}
		go s.acceptLoop(ep, ln, errCh)
	}
	return <-errCh
}

func (s *Service) acceptLoop(ep *Endpoint, ln net.Listener, errCh chan error) {
	s.Logger.Infof("endpoint %s listening", ep.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		if !ep.AdmitConnection() {
			conn.Close()
			continue
		}
		s.Metrics.ConnOpened(ep.Addr())
		go s.dispatch(ep, conn)
	}
}

// dispatch is the per-connection goroutine body: a simple blocking
// read/advance loop over the cooperative state machine.
func (s *Service) dispatch(ep *Endpoint, netConn net.Conn) {
	ep.trackConn(netConn)
	defer ep.untrackConn(netConn)
	defer netConn.Close()
	defer s.Metrics.ConnClosed(ep.Addr())

	c := NewConn(ep.Limits, s.Logger, s.Metrics)
	c.BindEndpoint(ep)

	buf := make([]byte, 64*1024)
	for {
		canContinue, err := c.Advance()
		if err != nil && c.Closed() {
			return
		}
		if canContinue {
			continue
		}
		if c.Closed() {
			return
		}

		if ep.Limits != nil && ep.Limits.TimerPeriod > 0 {
			netConn.SetReadDeadline(time.Now().Add(30 * time.Minute))
		}
		n, readErr := netConn.Read(buf)
		if n > 0 {
			c.Feed(buf[:n])
		}
		if readErr != nil {
			if readErr == io.EOF {
				return
			}
			return
		}
	}
}
