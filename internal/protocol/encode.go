package protocol

import "encoding/binary"

// Frame layout: Start || BE16(len) || payload || BE16(crc) || End.
// The checksum covers the payload only. Length-prefixing, not marker
// scanning, is the authoritative framing mechanism: payload bytes may
// legally contain the marker values and are never escaped.
const (
	DefaultStartMarker byte = 0x02
	DefaultEndMarker   byte = 0x03

	// FrameOverhead is the non-payload byte count of one frame: marker,
	// length, checksum, marker.
	FrameOverhead = 6

	headerLen  = 3 // start marker + 16-bit length
	trailerLen = 3 // 16-bit crc + end marker
)

// Codec carries the marker bytes for one protocol dialect.
type Codec struct {
	StartMarker byte
	EndMarker   byte
}

// DefaultCodec returns the dialect spoken by the embedded receiver.
func DefaultCodec() Codec {
	return Codec{StartMarker: DefaultStartMarker, EndMarker: DefaultEndMarker}
}

// Encode wraps payload into one well-formed frame of len(payload)+6 bytes.
// It is a pure function of payload and is valid for any payload length
// representable in 16 bits; the receiver's payload cap is a caller policy
// enforced before encoding, never here.
func (c Codec) Encode(payload []byte) []byte {
	buf := make([]byte, len(payload)+FrameOverhead)
	buf[0] = c.StartMarker
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(payload)))
	copy(buf[headerLen:], payload)
	binary.BigEndian.PutUint16(buf[headerLen+len(payload):], Checksum(payload))
	buf[len(buf)-1] = c.EndMarker
	return buf
}
