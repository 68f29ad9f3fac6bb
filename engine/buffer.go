package engine

import "bytes"

// inputBuffer is the per-connection byte queue bytes are appended to on
// every readable event and drained from as the parser makes progress. It
// plays the role of the teacher's r.input slice with elemBack/elemFore
// cursors, simplified to a bytes.Buffer since this core does not attempt
// the zero-copy span representation the original server uses internally.
type inputBuffer struct {
	buf bytes.Buffer
}

func (b *inputBuffer) append(p []byte) {
	b.buf.Write(p)
}

func (b *inputBuffer) len() int {
	return b.buf.Len()
}

// bytesValue exposes the buffered bytes without consuming them.
func (b *inputBuffer) bytesValue() []byte {
	return b.buf.Bytes()
}

// indexHeaderTerminator finds the CRLFCRLF header-block terminator, returning -1 if the
// buffered bytes don't yet contain one.
func (b *inputBuffer) indexHeaderTerminator() int {
	return bytes.Index(b.buf.Bytes(), []byte("\r\n\r\n"))
}

// consume drops the first n bytes from the buffer.
func (b *inputBuffer) consume(n int) {
	b.buf.Next(n)
}

// consumeString consumes and returns n bytes as a string.
func (b *inputBuffer) consumeString(n int) string {
	s := string(b.buf.Next(n))
	return s
}
