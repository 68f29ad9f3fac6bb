package engine

import "time"

// WaitResult reports why httpWait returned.
type WaitResult int

const (
	WaitReady WaitResult = iota
	WaitTimeout
	WaitConnection
)

// httpWait services a connection's state machine, feeding it bytes
// produced by pull as they arrive, until either the connection reaches
// completedCount target completions, the connection latches a fatal
// error, or deadline elapses. It is the in-process analogue of the
// original source's httpWait: a temporary wait condition with a bounded
// lifetime. The deadline is checked before each pull; a pull that blocks
// is not interrupted, so it can hold the caller past the deadline.
func httpWait(c *Conn, targetCompletions int, deadline time.Duration, pull func() ([]byte, bool)) WaitResult {
	expiry := time.Now().Add(deadline)
	for {
		for {
			more, err := c.Advance()
			if err != nil && c.Closed() {
				return WaitConnection
			}
			if c.CompletedCount() >= targetCompletions {
				return WaitReady
			}
			if !more {
				break
			}
		}
		if time.Now().After(expiry) {
			return WaitTimeout
		}
		chunk, ok := pull()
		if !ok {
			return WaitConnection
		}
		if len(chunk) > 0 {
			c.Feed(chunk)
		}
	}
}
