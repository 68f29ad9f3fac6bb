package engine

import "testing"

func TestWildcardVirtualHostMatching(t *testing.T) {
	ep := NewEndpoint("", 8080, nil)
	ep.NamedVirtualHosts = true

	suffixHost := NewHost("*.example.com")
	catchAll := NewHost("*")
	ep.AddHost(suffixHost)
	ep.AddHost(catchAll)

	host, matched := ep.MatchHost("svc.example.com")
	if !matched || host != suffixHost {
		t.Fatalf("expected svc.example.com to match the suffix host, got %+v matched=%v", host, matched)
	}

	host, matched = ep.MatchHost("other.org")
	if !matched || host != catchAll {
		t.Fatalf("expected other.org to fall through to the catch-all host, got %+v matched=%v", host, matched)
	}
}

func TestNonNamedVirtualHostsAlwaysUsesFirst(t *testing.T) {
	ep := NewEndpoint("", 8080, nil)
	first := NewHost("first")
	second := NewHost("second")
	ep.AddHost(first)
	ep.AddHost(second)

	host, matched := ep.MatchHost("second")
	if !matched || host != first {
		t.Fatalf("expected the first host regardless of the Host header, got %+v", host)
	}
}

func TestMatchHostNoHostsConfigured(t *testing.T) {
	ep := NewEndpoint("", 8080, nil)
	if host, matched := ep.MatchHost("anything"); host != nil || matched {
		t.Fatalf("expected no match on an endpoint with no hosts, got %+v matched=%v", host, matched)
	}
}

func TestShouldStreamStripsParameters(t *testing.T) {
	h := NewHost("example.com")
	h.SetStreaming("multipart/form-data", "/upload", true)

	if !h.ShouldStream("multipart/form-data; boundary=xyz", "/upload/file") {
		t.Fatal("expected streaming to be enabled for a matching mime/prefix pair")
	}
	if h.ShouldStream("multipart/form-data", "/other") {
		t.Fatal("expected streaming to be disabled outside the configured uri prefix")
	}
}
