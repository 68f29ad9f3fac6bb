package engine

import (
	"time"

	"golang.org/x/time/rate"
)

// Default limit values. Mirrors the constants rx.c enforces via
// conn->limits, scaled down for an embedded deployment.
const (
	DefaultHeaderSize      = 8192
	DefaultHeaderCount     = 100
	DefaultURISize         = 4096
	DefaultReceiveBodySize = 10 << 20
	DefaultChunkSize       = 8192
	DefaultTimerPeriod     = time.Second
	DefaultAcceptRate      = 500
	DefaultAcceptBurst     = 100
)

// Limits bounds the resources a single connection, or an endpoint's accept
// loop, may consume. A zero Limits is invalid; use NewLimits for defaults.
type Limits struct {
	HeaderSize         int
	HeaderCount        int
	URISize            int
	ReceiveBodySize    int64
	ChunkSize          int
	TimerPeriod        time.Duration
	MaxConcurrentConns int64

	AcceptRate  float64
	AcceptBurst int
}

// NewLimits returns a Limits populated with the package defaults.
func NewLimits() *Limits {
	return &Limits{
		HeaderSize:      DefaultHeaderSize,
		HeaderCount:     DefaultHeaderCount,
		URISize:         DefaultURISize,
		ReceiveBodySize: DefaultReceiveBodySize,
		ChunkSize:       DefaultChunkSize,
		TimerPeriod:     DefaultTimerPeriod,
		AcceptRate:      DefaultAcceptRate,
		AcceptBurst:     DefaultAcceptBurst,
	}
}

// acceptLimiter builds the x/time/rate limiter an Endpoint consults before
// handing an accepted socket to a dispatcher. A non-positive AcceptRate
// disables limiting (returns nil).
func (l *Limits) acceptLimiter() *rate.Limiter {
	if l == nil || l.AcceptRate <= 0 {
		return nil
	}
	burst := l.AcceptBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(l.AcceptRate), burst)
}
