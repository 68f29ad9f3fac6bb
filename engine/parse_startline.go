package engine

import (
	"strings"
)

// parseRequestLine implements parseRequestLine from rx.c: split the
// request line into method, URI and version, reject unknown methods and
// oversized/empty URIs, and set up HTTP/1.0 body-to-close semantics.
func parseRequestLine(line string, limits *Limits) (*Rx, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, newProtocolError(400, "bad request line")
	}
	methodTok, uriTok, versionTok := parts[0], parts[1], parts[2]

	flag, known := methodFlags[methodTok]
	if !known {
		return nil, newProtocolError(400, "bad method")
	}
	if uriTok == "" {
		return nil, newProtocolError(400, "empty uri")
	}
	if limits != nil && len(uriTok) > limits.URISize {
		return nil, newLimitError(414, "uri too long")
	}

	uri, err := setURI(uriTok)
	if err != nil {
		return nil, err
	}

	rx := newRx()
	rx.Method = methodTok
	rx.MethodFlags = flag
	rx.URI = uri

	switch versionTok {
	case "HTTP/1.1":
		// default keep-alive behavior; headers may still override.
	case "HTTP/1.0":
		rx.HTTP10 = true
		if flag == MethodPOST || flag == MethodPUT {
			// Body-to-close: the exact length is unknown until the
			// connection is closed by the peer.
			rx.Remaining = -1
		}
	default:
		return nil, newProtocolError(406, "unsupported http protocol")
	}

	return rx, nil
}
