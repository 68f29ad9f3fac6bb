package engine

import "strings"

// streamingRule pairs a MIME prefix and an optional URI prefix with
// whether bodies of that shape should be streamed to the handler rather
// than buffered whole, matching setStreaming's lookup semantics.
type streamingRule struct {
	mime      string
	uriPrefix string
	enabled   bool
}

// Host is a named collection of routes bound to one or more endpoints.
// Routes may be cloned copy-on-write from a parent host, matching
// httpCloneHost.
type Host struct {
	Name         string
	Protocol     string // "HTTP/1.0" or "HTTP/1.1"
	Routes       []*Route
	DefaultRoute *Route

	streaming []streamingRule

	parent *Host
}

// NewHost creates a host with no routes and a default route handler.
func NewHost(name string) *Host {
	def := &Route{Pattern: ""}
	return &Host{
		Name:         name,
		Protocol:     "HTTP/1.1",
		Routes:       []*Route{def},
		DefaultRoute: def,
	}
}

// CloneHost implements httpCloneHost: the new host shares its parent's
// Routes slice until the first AddRoute call triggers copy-on-write.
func CloneHost(parent *Host, name string) *Host {
	return &Host{
		Name:         name,
		Protocol:     parent.Protocol,
		Routes:       parent.Routes,
		DefaultRoute: parent.DefaultRoute,
		parent:       parent,
	}
}

// AddRoute inserts r into the host's route table, maintaining the
// terminal-default-route and NextGroup invariants.
func (h *Host) AddRoute(r *Route) {
	h.addRoute(r)
}

// SetStreaming records a streaming policy for a MIME type, optionally
// scoped to a URI prefix.
func (h *Host) SetStreaming(mime, uriPrefix string, enabled bool) {
	h.streaming = append(h.streaming, streamingRule{mime: mime, uriPrefix: uriPrefix, enabled: enabled})
}

// ShouldStream reports whether a request body of the given content-type
// and path should be streamed rather than buffered. Any ";" parameters on
// contentType are stripped before comparison, matching the original's
// lookup.
func (h *Host) ShouldStream(contentType, path string) bool {
	mime := truncateAtSemicolon(contentType)
	for _, rule := range h.streaming {
		if !strings.EqualFold(rule.mime, mime) {
			continue
		}
		if rule.uriPrefix != "" && !strings.HasPrefix(path, rule.uriPrefix) {
			continue
		}
		return rule.enabled
	}
	return false
}

// matchesHostHeader implements the name-matching rules lookupHostOnEndpoint
// uses: exact case-insensitive match, "*" matches anything, "*.suffix"
// matches any header containing ".suffix".
func (h *Host) matchesHostHeader(header string) bool {
	if header == "" {
		return true
	}
	name := h.Name
	if name == "*" {
		return true
	}
	if strings.HasPrefix(name, "*.") {
		suffix := name[1:] // keep the leading dot
		return strings.Contains(strings.ToLower(header), strings.ToLower(suffix))
	}
	return strings.EqualFold(name, header)
}
