package engine

import "testing"

func newTestRx() *Rx {
	return newRx()
}

func TestParseHeadersBadKeyChars(t *testing.T) {
	rx := newTestRx()
	_, err := parseHeaders(rx, "Bad<Key: value", NewLimits())
	if err == nil {
		t.Fatal("expected an error for a header key containing forbidden characters")
	}
}

func TestParseHeadersDuplicateContentLength(t *testing.T) {
	rx := newTestRx()
	_, err := parseHeaders(rx, "Content-Length: 5\r\nContent-Length: 6", NewLimits())
	if err == nil {
		t.Fatal("expected an error for duplicate Content-Length headers")
	}
}

func TestParseHeadersNegativeContentLength(t *testing.T) {
	rx := newTestRx()
	_, err := parseHeaders(rx, "Content-Length: -1", NewLimits())
	if err == nil {
		t.Fatal("expected an error for a negative Content-Length")
	}
}

func TestParseHeadersTooMany(t *testing.T) {
	rx := newTestRx()
	limits := NewLimits()
	limits.HeaderCount = 2
	_, err := parseHeaders(rx, "A: 1\r\nB: 2\r\nC: 3", limits)
	if err == nil {
		t.Fatal("expected an error once header count exceeds the limit")
	}
}

func TestParseHeadersConnectionClose(t *testing.T) {
	rx := newTestRx()
	cd, err := parseHeaders(rx, "Connection: close", NewLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cd.sawClose {
		t.Fatal("expected sawClose to be set")
	}
}

func TestParseHeadersKeepAliveForceZero(t *testing.T) {
	rx := newTestRx()
	cd, err := parseHeaders(rx, "Keep-Alive: timeout=5, max=1", NewLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cd.forceZero {
		t.Fatal("expected forceZero to be set for a max=1 Keep-Alive directive")
	}
}

func TestParseHeadersIfModifiedSince(t *testing.T) {
	rx := newTestRx()
	_, err := parseHeaders(rx, "If-Modified-Since: Sun, 06 Nov 1994 08:49:37 GMT", NewLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rx.IfModified {
		t.Fatal("expected IfModified to be set")
	}
	if rx.Since.Year() != 1994 {
		t.Fatalf("expected parsed year 1994, got %d", rx.Since.Year())
	}
}

func TestParseHeadersIfNoneMatch(t *testing.T) {
	rx := newTestRx()
	_, err := parseHeaders(rx, `If-None-Match: "abc", "def"`, NewLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rx.MatchEtags) != 2 {
		t.Fatalf("expected 2 etags, got %d: %v", len(rx.MatchEtags), rx.MatchEtags)
	}
}

func TestParseHeadersFoldsDuplicates(t *testing.T) {
	rx := newTestRx()
	_, err := parseHeaders(rx, "X-Foo: a\r\nX-Foo: b", NewLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := rx.Header.get("X-Foo")
	if !ok || v != "a, b" {
		t.Fatalf("expected folded value %q, got %q (ok=%v)", "a, b", v, ok)
	}
}
