package engine

import "time"

// Method flags, grounded on the method bitmask z_http_test.go exercises
// via httpMethodTable (MethodGET, MethodPOST, ...). Only the subset the
// original source's parseRequestLine switch recognizes is included.
const (
	MethodGET = 1 << iota
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodOPTIONS
	MethodTRACE
)

var methodFlags = map[string]uint32{
	"GET":     MethodGET,
	"HEAD":    MethodHEAD,
	"POST":    MethodPOST,
	"PUT":     MethodPUT,
	"DELETE":  MethodDELETE,
	"OPTIONS": MethodOPTIONS,
	"TRACE":   MethodTRACE,
}

// chunkState tracks progress through a chunked body, matching
// HTTP_CHUNK_START / HTTP_CHUNK_DATA / HTTP_CHUNK_EOF in rx.c.
type chunkState int

const (
	chunkStart chunkState = iota
	chunkData
	chunkEOF
)

// Rx holds all state accumulated while parsing one request. A fresh Rx is
// created per request on a connection; pipelined requests each get their
// own Rx, sharing only the connection's input buffer and keep-alive
// bookkeeping.
type Rx struct {
	Method      string
	MethodFlags uint32
	URI         *URI

	Header headerList

	ContentLength int64 // -1 if absent
	Remaining     int64
	Received      int64
	Chunked       bool
	chunkState    chunkState

	Host       string
	UserAgent  string
	Referer    string
	ContentType string
	Cookie     string

	MatchEtags  []string
	IfMatch     bool
	IfModified  bool
	Since       time.Time

	Ranges       []Range
	ContentRange *ContentRange

	AuthType    string
	AuthDetails string
	Challenge   *AuthChallenge
	Digest      *DigestCredentials

	HTTP10 bool
	EOF    bool

	startedAt time.Time
}

func newRx() *Rx {
	return &Rx{ContentLength: -1, Remaining: 0}
}

// bodyIsFramed reports whether the request declares a body at all
// (identity Content-Length, chunked encoding, or HTTP/1.0 body-to-close).
func (rx *Rx) bodyIsFramed() bool {
	return rx.Chunked || rx.ContentLength > 0 || rx.Remaining != 0
}
