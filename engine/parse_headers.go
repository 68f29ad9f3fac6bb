package engine

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// connectionDirectives summarizes what the Connection/Keep-Alive headers
// told us, for the caller (Conn) to fold into its keep-alive counter. The
// state machine owns keepAliveCount; the header parser only reports what
// it observed.
type connectionDirectives struct {
	sawKeepAlive bool
	sawClose     bool
	forceZero    bool // Keep-Alive: ...x=1 suffix, per the original's lenient check
}

// parseHeaders implements parseHeaders from rx.c: iterate CRLF-delimited
// header lines, validate and fold them into rx's fields, and reject the
// request outright on any of the limit/format violations the original
// enforces.
func parseHeaders(rx *Rx, block string, limits *Limits) (connectionDirectives, error) {
	var cd connectionDirectives
	lines := strings.Split(block, "\r\n")

	count := 0
	sawContentLength := false
	sawChunked := false

	for _, line := range lines {
		if line == "" {
			continue
		}
		count++
		if limits != nil && count > limits.HeaderCount {
			return cd, newLimitError(400, "too many headers")
		}

		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return cd, newProtocolError(400, "bad header format")
		}
		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		if strings.ContainsAny(key, "%<>/\\") {
			return cd, newProtocolError(400, "bad header key value")
		}
		if !httpguts.ValidHeaderFieldName(key) {
			return cd, newProtocolError(400, "bad header key value")
		}

		lowerKey := strings.ToLower(key)

		switch lowerKey[0] {
		case 'a':
			switch lowerKey {
			case "authorization":
				sp := strings.IndexByte(value, ' ')
				if sp < 0 {
					rx.AuthType = strings.ToLower(value)
				} else {
					rx.AuthType = strings.ToLower(value[:sp])
					rx.AuthDetails = value[sp+1:]
					if rx.AuthType == "digest" {
						d, err := parseDigestCredentials(rx.AuthDetails)
						if err != nil {
							return cd, err
						}
						rx.Digest = d
					}
				}
			}
		case 'c':
			switch lowerKey {
			case "content-length":
				if sawContentLength {
					return cd, newProtocolError(400, "multiple content length headers")
				}
				sawContentLength = true
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil || n < 0 {
					return cd, newProtocolError(400, "bad content length")
				}
				if limits != nil && n > limits.ReceiveBodySize {
					return cd, newLimitError(413, "content length too large")
				}
				rx.ContentLength = n
				rx.Remaining = n
			case "content-range":
				cr, err := parseContentRangeHeader(value)
				if err != nil {
					return cd, err
				}
				rx.ContentRange = &cr
			case "content-type":
				rx.ContentType = value
			case "cookie":
				if rx.Cookie == "" {
					rx.Cookie = value
				} else {
					rx.Cookie += "; " + value
				}
			case "connection":
				switch strings.ToLower(value) {
				case "keep-alive":
					cd.sawKeepAlive = true
				case "close":
					cd.sawClose = true
				}
			}
		case 'h':
			if lowerKey == "host" {
				rx.Host = value
			}
		case 'i':
			switch lowerKey {
			case "if-modified-since":
				if t, ok := parseHTTPDate(truncateAtSemicolon(value)); ok {
					rx.Since = t
					rx.IfModified = true
				}
			case "if-unmodified-since":
				if t, ok := parseHTTPDate(truncateAtSemicolon(value)); ok {
					rx.Since = t
					rx.IfModified = true
				}
			case "if-match", "if-none-match", "if-range":
				for _, tok := range strings.Fields(strings.ReplaceAll(truncateAtSemicolon(value), ",", " ")) {
					rx.MatchEtags = append(rx.MatchEtags, tok)
				}
				rx.IfMatch = true
			}
		case 'k':
			if lowerKey == "keep-alive" {
				if strings.HasSuffix(strings.ToLower(strings.ReplaceAll(value, " ", "")), "x=1") {
					cd.forceZero = true
				}
			}
		case 'r':
			if lowerKey == "range" {
				ranges, err := parseRangeHeader(value)
				if err != nil {
					return cd, err
				}
				rx.Ranges = ranges
			} else if lowerKey == "referer" {
				rx.Referer = value
			}
		case 't':
			if lowerKey == "transfer-encoding" {
				if strings.EqualFold(value, "chunked") {
					sawChunked = true
				}
			}
		case 'u':
			if lowerKey == "user-agent" {
				rx.UserAgent = value
			}
		case 'w':
			if lowerKey == "www-authenticate" {
				sp := strings.IndexByte(value, ' ')
				var scheme, rest string
				if sp < 0 {
					scheme = value
				} else {
					scheme = value[:sp]
					rest = value[sp+1:]
				}
				challenge, err := parseAuthenticate(scheme, rest)
				if err != nil {
					return cd, newProtocolError(400, "bad authentication header")
				}
				rx.Challenge = challenge
			}
		}

		rx.Header.add(lowerKey, value)
	}

	if sawContentLength && sawChunked {
		return cd, newProtocolError(400, "content-length and transfer-encoding: chunked may not coexist")
	}
	if sawChunked {
		rx.Chunked = true
		rx.Remaining = 0 // determined per-chunk from here on
	}

	if rx.Remaining == 0 && !rx.Chunked {
		rx.EOF = true
	}

	return cd, nil
}

func truncateAtSemicolon(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

var httpDateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Monday, 02-Jan-06 15:04:05 MST",
	time.ANSIC,
}

func parseHTTPDate(s string) (time.Time, bool) {
	for _, layout := range httpDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
