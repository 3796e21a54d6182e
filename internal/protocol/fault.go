package protocol

import (
	"encoding/binary"
	"math/rand"
	"time"
)

// Variant tags one deliberate single-invariant violation of a well-formed
// frame. Each variant breaks exactly one rule and leaves the rest intact,
// so a receiver's rejection can be attributed to a single cause.
type Variant int

const (
	VariantMissingStart Variant = iota
	VariantMissingEnd
	VariantLengthMismatchRandom
	VariantChecksumCorrupted
	VariantLengthPayloadInconsistent
	VariantOversizedPayload
)

func (v Variant) String() string {
	switch v {
	case VariantMissingStart:
		return "start marker missing"
	case VariantMissingEnd:
		return "end marker missing"
	case VariantLengthMismatchRandom:
		return "wrong length field"
	case VariantChecksumCorrupted:
		return "wrong CRC"
	case VariantLengthPayloadInconsistent:
		return "length/payload mismatch"
	case VariantOversizedPayload:
		return "oversized payload"
	default:
		return "unknown"
	}
}

// Variants lists every fault variant in menu order.
func Variants() []Variant {
	return []Variant{
		VariantMissingStart,
		VariantMissingEnd,
		VariantLengthMismatchRandom,
		VariantChecksumCorrupted,
		VariantLengthPayloadInconsistent,
		VariantOversizedPayload,
	}
}

const (
	// DefaultDeltaMin/Max bound the random length-field skew, inclusive.
	DefaultDeltaMin = -3
	DefaultDeltaMax = 7

	// DefaultOversizeTarget is the oversized-frame payload size in bytes.
	DefaultOversizeTarget = 600

	crcCorruptMask         uint16 = 0xA5A5
	inconsistentLengthSkew        = 5
	oversizeFiller         byte   = 'A'
)

// Injector builds frames that each violate exactly one framing rule. The
// random source is injected so length deltas are reproducible under test.
type Injector struct {
	codec          Codec
	rng            *rand.Rand
	deltaMin       int
	deltaMax       int
	oversizeTarget int
}

// InjectorOption adjusts Injector construction.
type InjectorOption func(*Injector)

// WithDeltaBounds overrides the inclusive random length-skew bounds.
func WithDeltaBounds(min, max int) InjectorOption {
	return func(in *Injector) {
		in.deltaMin = min
		in.deltaMax = max
	}
}

// WithOversizeTarget overrides the oversized-frame payload size. The
// target is clamped to what the 16-bit length field can declare, so the
// built frame stays self-consistent; non-positive values keep the default.
func WithOversizeTarget(n int) InjectorOption {
	return func(in *Injector) {
		if n <= 0 {
			return
		}
		if n > 65535 {
			n = 65535
		}
		in.oversizeTarget = n
	}
}

// NewInjector builds an Injector. A nil rng gets a time-seeded source;
// pass a seeded one for reproducible length deltas.
func NewInjector(codec Codec, rng *rand.Rand, opts ...InjectorOption) *Injector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	in := &Injector{
		codec:          codec,
		rng:            rng,
		deltaMin:       DefaultDeltaMin,
		deltaMax:       DefaultDeltaMax,
		oversizeTarget: DefaultOversizeTarget,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Build dispatches to the named variant's builder.
func (in *Injector) Build(v Variant, payload []byte) ([]byte, error) {
	switch v {
	case VariantMissingStart:
		return in.MissingStart(payload), nil
	case VariantMissingEnd:
		return in.MissingEnd(payload), nil
	case VariantLengthMismatchRandom:
		return in.LengthMismatchRandom(payload), nil
	case VariantChecksumCorrupted:
		return in.ChecksumCorrupted(payload), nil
	case VariantLengthPayloadInconsistent:
		return in.LengthPayloadInconsistent(payload), nil
	case VariantOversizedPayload:
		return in.OversizedPayload(payload), nil
	default:
		return nil, ErrUnknownVariant
	}
}

// MissingStart drops the start marker and sends the rest intact.
func (in *Injector) MissingStart(payload []byte) []byte {
	return in.codec.Encode(payload)[1:]
}

// MissingEnd drops the end marker and sends the rest intact.
func (in *Injector) MissingEnd(payload []byte) []byte {
	framed := in.codec.Encode(payload)
	return framed[:len(framed)-1]
}

// LengthMismatchRandom declares len(payload)+delta mod 65536 for a delta
// drawn uniformly from the configured bounds. The checksum still covers
// the true payload.
func (in *Injector) LengthMismatchRandom(payload []byte) []byte {
	framed := in.codec.Encode(payload)
	delta := in.deltaMin + in.rng.Intn(in.deltaMax-in.deltaMin+1)
	binary.BigEndian.PutUint16(framed[1:3], uint16(len(payload)+delta))
	return framed
}

// ChecksumCorrupted flips checksum bits while markers, length and payload
// stay valid.
func (in *Injector) ChecksumCorrupted(payload []byte) []byte {
	framed := in.codec.Encode(payload)
	bad := Checksum(payload) ^ crcCorruptMask
	binary.BigEndian.PutUint16(framed[len(framed)-trailerLen:], bad)
	return framed
}

// LengthPayloadInconsistent declares len(payload)+5 but transmits only the
// original payload bytes before the checksum and terminator.
func (in *Injector) LengthPayloadInconsistent(payload []byte) []byte {
	framed := in.codec.Encode(payload)
	binary.BigEndian.PutUint16(framed[1:3], uint16(len(payload)+inconsistentLengthSkew))
	return framed
}

// OversizedPayload builds a fully well-formed frame whose payload is the
// oversize target size: the given payload repeated and truncated to fit,
// or filler bytes when none is supplied. It proves the receiver's size
// policy is independent of framing and CRC validity.
func (in *Injector) OversizedPayload(payload []byte) []byte {
	big := make([]byte, 0, in.oversizeTarget)
	if len(payload) > 0 {
		for len(big) < in.oversizeTarget {
			big = append(big, payload...)
		}
		big = big[:in.oversizeTarget]
	} else {
		for len(big) < in.oversizeTarget {
			big = append(big, oversizeFiller)
		}
	}
	return in.codec.Encode(big)
}
