package engine

import (
	"bytes"
	"net"
	"testing"
	"time"
)

// discardNetConn is a bare net.Conn stub used only to occupy a slot in an
// Endpoint's connection registry for admission tests.
type discardNetConn struct{}

func (discardNetConn) Read(b []byte) (int, error)         { return 0, nil }
func (discardNetConn) Write(b []byte) (int, error)        { return len(b), nil }
func (discardNetConn) Close() error                       { return nil }
func (discardNetConn) LocalAddr() net.Addr                { return nil }
func (discardNetConn) RemoteAddr() net.Addr               { return nil }
func (discardNetConn) SetDeadline(t time.Time) error      { return nil }
func (discardNetConn) SetReadDeadline(t time.Time) error  { return nil }
func (discardNetConn) SetWriteDeadline(t time.Time) error { return nil }

func feedAll(c *Conn, data []byte, chunkSize int) {
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		c.Feed(data[:n])
		data = data[n:]
		for {
			more, _ := c.Advance()
			if !more {
				break
			}
		}
	}
}

func TestMinimalGET(t *testing.T) {
	c := NewConn(nil, nil, nil)
	req := []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	feedAll(c, req, len(req))

	if c.CompletedCount() != 1 {
		t.Fatalf("expected 1 completed request, got %d", c.CompletedCount())
	}
}

func TestPOSTWithContentLength(t *testing.T) {
	c := NewConn(nil, nil, nil)
	req := []byte("POST /a HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello")

	// Feed one byte at a time so the body arrives across many Advance
	// calls, also exercising the byte-at-a-time path of invariant 1.
	var got []byte
	for i := 0; i < len(req); i++ {
		c.Feed(req[i : i+1])
		for {
			more, _ := c.Advance()
			for _, b := range c.RecvQueue() {
				got = append(got, b...)
			}
			c.recvQueue = c.recvQueue[:0]
			if !more {
				break
			}
		}
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("expected body %q, got %q", "hello", got)
	}
	if c.CompletedCount() != 1 {
		t.Fatalf("expected 1 completed request, got %d", c.CompletedCount())
	}
}

func TestByteAtATimeEquivalentToWholeBuffer(t *testing.T) {
	req := []byte("POST /a HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello")

	whole := NewConn(nil, nil, nil)
	feedAll(whole, append([]byte{}, req...), len(req))

	perByte := NewConn(nil, nil, nil)
	feedAll(perByte, append([]byte{}, req...), 1)

	if whole.CompletedCount() != perByte.CompletedCount() {
		t.Fatalf("byte-at-a-time completion count diverged: %d vs %d", whole.CompletedCount(), perByte.CompletedCount())
	}
}

func TestChunkedBody(t *testing.T) {
	c := NewConn(nil, nil, nil)
	req := []byte("POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n")

	var got []byte
	for i := 0; i < len(req); i++ {
		c.Feed(req[i : i+1])
		for {
			more, _ := c.Advance()
			for _, b := range c.RecvQueue() {
				got = append(got, b...)
			}
			c.recvQueue = c.recvQueue[:0]
			if !more {
				break
			}
		}
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
	if c.CompletedCount() != 1 {
		t.Fatalf("expected 1 completed request, got %d", c.CompletedCount())
	}
}

func TestPipeliningNoExtraFeed(t *testing.T) {
	c := NewConn(nil, nil, nil)
	first := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	second := "POST /a HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"
	c.Feed([]byte(first + second))

	for {
		more, _ := c.Advance()
		if !more {
			break
		}
	}

	if c.CompletedCount() != 2 {
		t.Fatalf("expected 2 completed requests from a single Feed, got %d", c.CompletedCount())
	}
}

func TestContentLengthAndChunkedConflictRejected(t *testing.T) {
	c := NewConn(nil, nil, nil)
	req := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n"
	c.Feed([]byte(req))
	_, err := c.Advance()
	if err == nil {
		t.Fatal("expected an error for conflicting Content-Length/chunked headers")
	}
	e, ok := err.(*Error)
	if !ok || e.Status != 400 {
		t.Fatalf("expected a 400 protocol error, got %v", err)
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	c := NewConn(nil, nil, nil)
	c.Feed([]byte("FROBNICATE / HTTP/1.1\r\nHost: x\r\n\r\n"))
	_, err := c.Advance()
	if err == nil {
		t.Fatal("expected an error for an unknown method")
	}
}

func TestUnmatchedNamedVirtualHostReturns404(t *testing.T) {
	ep := NewEndpoint("", 8080, nil)
	ep.NamedVirtualHosts = true
	ep.AddHost(NewHost("example.com"))

	c := NewConn(ep.Limits, nil, nil)
	c.BindEndpoint(ep)
	c.Feed([]byte("GET / HTTP/1.1\r\nHost: other.org\r\n\r\n"))

	_, err := c.Advance()
	e, ok := err.(*Error)
	if !ok || e.Status != 404 {
		t.Fatalf("expected a 404 for an unmatched Host header under named-vhost mode, got %v", err)
	}
}

func TestMaxConcurrentConnsRejectsOnceExceeded(t *testing.T) {
	limits := NewLimits()
	limits.MaxConcurrentConns = 1
	ep := NewEndpoint("", 8080, limits)
	ep.AddHost(NewHost("example.com"))

	c := NewConn(ep.Limits, nil, nil)
	c.BindEndpoint(ep)
	c.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))

	if _, err := c.Advance(); err != nil {
		t.Fatalf("expected the first request to be admitted, got %v", err)
	}

	// Simulate two connections already open against the endpoint.
	ep.trackConn(discardNetConn{})
	ep.trackConn(discardNetConn{})

	c2 := NewConn(ep.Limits, nil, nil)
	c2.BindEndpoint(ep)
	c2.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))

	_, err := c2.Advance()
	e, ok := err.(*Error)
	if !ok || e.Status != 503 {
		t.Fatalf("expected a 503 once MaxConcurrentConns is exceeded, got %v", err)
	}
}

func TestHTTP10ForcesKeepAliveZeroByDefault(t *testing.T) {
	c := NewConn(nil, nil, nil)
	c.Feed([]byte("GET / HTTP/1.0\r\nHost: x\r\n\r\n"))
	for {
		more, _ := c.Advance()
		if !more {
			break
		}
	}
	if c.keepAliveCount != 0 {
		t.Fatalf("expected keepAliveCount 0 after an HTTP/1.0 request without Connection: keep-alive, got %d", c.keepAliveCount)
	}
}
