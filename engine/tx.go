package engine

import "time"

// Tx holds the response-side state the connection assembles while a
// request is RUNNING: status line, headers to send, and the framing
// decision (identity length vs. chunked) finalizeHeaders must make before
// the first response byte goes out.
type Tx struct {
	Status        int
	StatusMessage string
	Header        headerList

	ContentLength int64 // -1 means chunked or not yet known
	Chunked       bool

	Ext string // copied from the request URI for content-type negotiation

	Date         time.Time
	LastModified time.Time
	Expires      time.Time

	KeepAlive bool
}

func newTx() *Tx {
	return &Tx{Status: 200, ContentLength: -1}
}

// finalizeHeaders decides the framing for a response that has no
// explicit Content-Length set: HTTP/1.1 gets chunked, HTTP/1.0 gets
// body-to-close (no Content-Length, connection closes after the body).
func (tx *Tx) finalizeHeaders(http10 bool) {
	if tx.ContentLength >= 0 {
		return
	}
	if http10 {
		tx.Chunked = false
		return
	}
	tx.Chunked = true
}
