package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// Limits constrains how large a payload the receiver policy accepts.
type Limits struct {
	MaxPayloadBytes int
}

// DefaultLimits matches the embedded receiver's configured maximum.
func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 128}
}

// Decode validates one complete candidate frame and returns its payload.
// It is the reference decoder for the embedded receiver's contract: each
// fault variant must fail here for the one reason its row names. The size
// policy is checked as soon as the length field parses, before terminator
// and checksum validation, so an oversized frame is rejected on policy
// grounds alone.
func (c Codec) Decode(b []byte, limits Limits) ([]byte, error) {
	if len(b) < FrameOverhead {
		return nil, ErrTruncated
	}
	if b[0] != c.StartMarker {
		return nil, ErrMissingStart
	}
	declared := int(binary.BigEndian.Uint16(b[1:3]))
	if declared > limits.MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}
	total := declared + FrameOverhead
	if len(b) < total {
		// End marker before the declared length is satisfied is a length
		// fault; no terminator at all leaves a receiver awaiting more bytes.
		if b[len(b)-1] == c.EndMarker {
			return nil, ErrLengthMismatch
		}
		return nil, ErrAwaitingEnd
	}
	if len(b) > total || b[total-1] != c.EndMarker {
		return nil, ErrLengthMismatch
	}
	payload := b[headerLen : headerLen+declared]
	want := binary.BigEndian.Uint16(b[total-trailerLen : total-1])
	if Checksum(payload) != want {
		return nil, ErrChecksumMismatch
	}
	out := make([]byte, declared)
	copy(out, payload)
	return out, nil
}

// ReadFrame reads one frame from r. It mirrors Decode but consumes exactly
// one frame's worth of bytes, blocking on the reader the way the real
// receiver blocks on the wire.
func (c Codec) ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [headerLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	if head[0] != c.StartMarker {
		return nil, ErrMissingStart
	}
	declared := int(binary.BigEndian.Uint16(head[1:3]))
	if declared > limits.MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}
	body := make([]byte, declared+trailerLen)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrAwaitingEnd
		}
		return nil, err
	}
	if body[declared+2] != c.EndMarker {
		return nil, ErrLengthMismatch
	}
	payload := body[:declared]
	want := binary.BigEndian.Uint16(body[declared : declared+2])
	if Checksum(payload) != want {
		return nil, ErrChecksumMismatch
	}
	out := make([]byte, declared)
	copy(out, payload)
	return out, nil
}
