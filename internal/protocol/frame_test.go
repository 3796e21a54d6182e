package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	codec := DefaultCodec()
	for _, size := range []int{0, 1, 5, 128, 600, 4096} {
		payload := bytes.Repeat([]byte{0xAB}, size)
		framed := codec.Encode(payload)
		if len(framed) != size+FrameOverhead {
			t.Fatalf("size %d: frame length %d want %d", size, len(framed), size+FrameOverhead)
		}
		if framed[0] != DefaultStartMarker {
			t.Fatalf("size %d: first byte 0x%02X want 0x02", size, framed[0])
		}
		if framed[len(framed)-1] != DefaultEndMarker {
			t.Fatalf("size %d: last byte 0x%02X want 0x03", size, framed[len(framed)-1])
		}
		if got := binary.BigEndian.Uint16(framed[1:3]); int(got) != size {
			t.Fatalf("size %d: length field %d", size, got)
		}
		if got := binary.BigEndian.Uint16(framed[len(framed)-3 : len(framed)-1]); got != Checksum(payload) {
			t.Fatalf("size %d: crc field 0x%04X want 0x%04X", size, got, Checksum(payload))
		}
	}
}

func TestEncodeHelloVector(t *testing.T) {
	framed := DefaultCodec().Encode([]byte("hello"))
	crc := Checksum([]byte("hello"))
	want := []byte{0x02, 0x00, 0x05, 0x68, 0x65, 0x6C, 0x6C, 0x6F, byte(crc >> 8), byte(crc), 0x03}
	if len(framed) != 11 {
		t.Fatalf("frame length %d want 11", len(framed))
	}
	if !bytes.Equal(framed, want) {
		t.Fatalf("frame mismatch:\n got %X\nwant %X", framed, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	codec := DefaultCodec()
	limits := Limits{MaxPayloadBytes: 65535}
	payloads := [][]byte{
		nil,
		{0x00},
		{0x02, 0x03, 0x02, 0x03}, // embedded marker bytes must not confuse framing
		[]byte("hello"),
		bytes.Repeat([]byte{0x5A}, 600),
	}
	for _, payload := range payloads {
		got, err := codec.Decode(codec.Encode(payload), limits)
		if err != nil {
			t.Fatalf("decode well-formed frame (%d bytes): %v", len(payload), err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("payload mismatch: got %X want %X", got, payload)
		}
	}
}

func TestReadFrameRoundTrip(t *testing.T) {
	codec := DefaultCodec()
	payload := []byte("stream me")
	var buf bytes.Buffer
	buf.Write(codec.Encode(payload))
	got, err := codec.ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("reader not fully consumed: %d bytes left", buf.Len())
	}
}

func TestReadFrameConsumesExactlyOneFrame(t *testing.T) {
	codec := DefaultCodec()
	var buf bytes.Buffer
	buf.Write(codec.Encode([]byte("one")))
	buf.Write(codec.Encode([]byte("two")))
	first, err := codec.ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	second, err := codec.ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if string(first) != "one" || string(second) != "two" {
		t.Fatalf("frames out of order: %q, %q", first, second)
	}
}

func TestDecodeRejectsOversizedPayload(t *testing.T) {
	codec := DefaultCodec()
	framed := codec.Encode(bytes.Repeat([]byte{0x01}, 129))
	if _, err := codec.Decode(framed, DefaultLimits()); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	codec := DefaultCodec()
	for _, in := range [][]byte{nil, {0x02}, {0x02, 0x00}, {0x02, 0x00, 0x01}} {
		if _, err := codec.Decode(in, DefaultLimits()); !errors.Is(err, ErrTruncated) {
			t.Fatalf("input %X: expected ErrTruncated, got %v", in, err)
		}
	}
}

func TestDecodeMissingStartMarker(t *testing.T) {
	codec := DefaultCodec()
	framed := codec.Encode([]byte("abc"))
	framed[0] = 0x7E
	if _, err := codec.Decode(framed, DefaultLimits()); !errors.Is(err, ErrMissingStart) {
		t.Fatalf("expected ErrMissingStart, got %v", err)
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	codec := DefaultCodec()
	framed := codec.Encode([]byte("abc"))
	framed[len(framed)-2] ^= 0xFF
	if _, err := codec.Decode(framed, DefaultLimits()); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestCustomMarkerDialect(t *testing.T) {
	codec := Codec{StartMarker: 0x7E, EndMarker: 0x7F}
	payload := []byte("dialect")
	framed := codec.Encode(payload)
	if framed[0] != 0x7E || framed[len(framed)-1] != 0x7F {
		t.Fatalf("custom markers not applied: %X", framed)
	}
	got, err := codec.Decode(framed, DefaultLimits())
	if err != nil {
		t.Fatalf("decode custom dialect: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
}
