package engine

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Endpoint is a bound listener: an (ip, port) pair, its ordered list of
// hosts, and the accept-loop limits that gate how fast new connections
// are handed off to dispatchers. Grounded on httpCreateEndpoint and
// acceptConn in endpoint.c.
type Endpoint struct {
	IP                string
	Port              int
	NamedVirtualHosts bool

	Limits *Limits

	mu    sync.Mutex
	hosts []*Host

	limiter    *rate.Limiter
	activeConn int64

	listener net.Listener

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	logger  Logger
	metrics MetricsRecorder
}

// NewEndpoint creates an endpoint bound to ip:port. An empty ip means all
// interfaces, matching the original's convention. A bind of the form
// "host:port" with port == -1 is split first, per normalizeBind.
func NewEndpoint(ip string, port int, limits *Limits) *Endpoint {
	if limits == nil {
		limits = NewLimits()
	}
	ip, port = normalizeBind(ip, port)
	return &Endpoint{
		IP:      ip,
		Port:    port,
		Limits:  limits,
		limiter: limits.acceptLimiter(),
		logger:  discardLogger{},
		metrics: discardMetrics{},
	}
}

// Addr renders the endpoint's bind address for metrics labels and logs.
func (e *Endpoint) Addr() string {
	ip := e.IP
	if ip == "" {
		ip = "0.0.0.0"
	}
	return ip + ":" + strconv.Itoa(e.Port)
}

// AddHost appends a host to the endpoint's ordered host list.
func (e *Endpoint) AddHost(h *Host) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hosts = append(e.hosts, h)
}

// Hosts returns a snapshot of the endpoint's host list.
func (e *Endpoint) Hosts() []*Host {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Host, len(e.hosts))
	copy(out, e.hosts)
	return out
}

// MatchHost implements httpMatchHost/lookupHostOnEndpoint: pick the first
// host whose name matches header, falling back to the first host if the
// endpoint doesn't use named virtual hosts, or as an error-rendering
// fallback when namedVirtualHosts is set but nothing matched.
func (e *Endpoint) MatchHost(header string) (host *Host, matched bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.hosts) == 0 {
		return nil, false
	}
	if !e.NamedVirtualHosts {
		return e.hosts[0], true
	}
	for _, h := range e.hosts {
		if h.matchesHostHeader(header) {
			return h, true
		}
	}
	return e.hosts[0], false
}

// AdmitConnection consults the endpoint's accept-rate limiter. It returns
// false when the socket should be closed immediately rather than handed
// to a dispatcher, implementing the accept-rate limiting supplement on
// top of httpStartEndpoint's acceptConn.
func (e *Endpoint) AdmitConnection() bool {
	if e.limiter == nil {
		return true
	}
	return e.limiter.Allow()
}

// Listen opens the bound TCP listener.
func (e *Endpoint) Listen() (net.Listener, error) {
	addr := e.Addr()
	if e.Port == -1 {
		addr = e.IP
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	e.listener = ln
	return ln, nil
}

// Close shuts down the endpoint's listener, if any.
func (e *Endpoint) Close() error {
	if e.listener == nil {
		return nil
	}
	return e.listener.Close()
}

// ActiveConns reports how many connections are currently tracked against
// this endpoint's MaxConcurrentConns cap.
func (e *Endpoint) ActiveConns() int64 {
	return atomic.LoadInt64(&e.activeConn)
}

// AdmitBegin implements the concurrency-limit half of admission, checked
// once per request at the start of the BEGIN state (httpValidateLimits'
// HTTP_VALIDATE_OPEN_REQUEST check in rx.c). A non-positive
// MaxConcurrentConns disables the cap.
func (e *Endpoint) AdmitBegin() bool {
	if e.Limits == nil || e.Limits.MaxConcurrentConns <= 0 {
		return true
	}
	return atomic.LoadInt64(&e.activeConn) <= e.Limits.MaxConcurrentConns
}

// trackConn registers a live connection so Shutdown can tear it down and
// AdmitBegin can see it counted against MaxConcurrentConns.
func (e *Endpoint) trackConn(nc net.Conn) {
	atomic.AddInt64(&e.activeConn, 1)
	e.connsMu.Lock()
	if e.conns == nil {
		e.conns = make(map[net.Conn]struct{})
	}
	e.conns[nc] = struct{}{}
	e.connsMu.Unlock()
}

// untrackConn removes a connection tracked by trackConn, called once the
// connection's dispatcher goroutine returns.
func (e *Endpoint) untrackConn(nc net.Conn) {
	atomic.AddInt64(&e.activeConn, -1)
	e.connsMu.Lock()
	delete(e.conns, nc)
	e.connsMu.Unlock()
}

// Shutdown closes the endpoint's listener and tears down every connection
// still tracked against it, matching the original's endpoint-shutdown
// enumeration of the global connection list.
func (e *Endpoint) Shutdown() error {
	err := e.Close()

	e.connsMu.Lock()
	conns := e.conns
	e.conns = nil
	e.connsMu.Unlock()

	for nc := range conns {
		nc.Close()
	}
	return err
}

// splitHostPort is used when building an Endpoint from a single bind
// string in configuration.
func splitHostPort(bind string) (ip string, port int, err error) {
	host, portStr, splitErr := net.SplitHostPort(bind)
	if splitErr != nil {
		return "", 0, splitErr
	}
	p, convErr := strconv.Atoi(portStr)
	if convErr != nil {
		return "", 0, convErr
	}
	return host, p, nil
}

func normalizeBind(ip string, port int) (string, int) {
	if port == -1 && strings.Contains(ip, ":") {
		if h, p, err := splitHostPort(ip); err == nil {
			return h, p
		}
	}
	return ip, port
}
