package engine

import (
	"bytes"
	"strconv"
)

// dechunker decodes a chunked-transfer body incrementally, matching
// getChunkPacketSize from rx.c: a chunk-size line (optionally preceded by
// the CRLF left over from the previous chunk's data), a hex length, and a
// data span of that many bytes. A zero-length chunk terminates the body;
// its trailing CRLF is consumed if present but not required.
type dechunker struct {
	state     chunkState
	remaining int64
}

// feed attempts to decode as much chunked data as is currently buffered.
// It returns the decoded payload bytes, whether the body has reached its
// terminating zero-chunk, and whether more input is needed before further
// progress can be made (canProceed=false with no error means "suspend").
func (d *dechunker) feed(in *inputBuffer) (data []byte, eof bool, canProceed bool, err error) {
	for {
		switch d.state {
		case chunkData:
			if d.remaining > 0 {
				avail := int64(in.len())
				if avail == 0 {
					return data, false, false, nil
				}
				take := d.remaining
				if avail < take {
					take = avail
				}
				chunk := in.consumeString(int(take))
				data = append(data, chunk...)
				d.remaining -= take
				if d.remaining > 0 {
					return data, false, false, nil
				}
			}
			// consume trailing CRLF after a full chunk's data; on re-entry
			// with remaining == 0 the payload is done and only this is left
			if in.len() < 2 {
				return data, false, false, nil
			}
			if !bytes.HasPrefix(in.bytesValue(), []byte("\r\n")) {
				return data, false, true, newProtocolError(400, "bad chunk terminator")
			}
			in.consume(2)
			d.state = chunkStart

		case chunkStart:
			raw := in.bytesValue()
			nl := bytes.IndexByte(raw, '\n')
			if nl < 0 {
				if len(raw) > 80 {
					return data, false, true, newProtocolError(400, "bad chunk specification")
				}
				return data, false, false, nil
			}
			if nl > 80 {
				return data, false, true, newProtocolError(400, "bad chunk specification")
			}
			line := raw[:nl]
			line = bytes.TrimSuffix(line, []byte("\r"))
			sizeField := line
			if semi := bytes.IndexByte(sizeField, ';'); semi >= 0 {
				sizeField = sizeField[:semi]
			}
			size, hexErr := strconv.ParseInt(string(bytes.TrimSpace(sizeField)), 16, 64)
			if hexErr != nil || size < 0 {
				return data, false, true, newProtocolError(400, "bad chunk specification")
			}
			in.consume(nl + 1)
			if size == 0 {
				d.state = chunkEOF
				continue
			}
			d.remaining = size
			d.state = chunkData

		case chunkEOF:
			// Tolerate absence of the final CRLF, per the original's
			// lenient trailing-terminator handling.
			if in.len() >= 2 && bytes.HasPrefix(in.bytesValue(), []byte("\r\n")) {
				in.consume(2)
			}
			return data, true, true, nil
		}
	}
}
