package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"
)

func newTestInjector(seed int64, opts ...InjectorOption) *Injector {
	return NewInjector(DefaultCodec(), rand.New(rand.NewSource(seed)), opts...)
}

func TestVariantLabels(t *testing.T) {
	want := map[Variant]string{
		VariantMissingStart:              "start marker missing",
		VariantMissingEnd:                "end marker missing",
		VariantLengthMismatchRandom:      "wrong length field",
		VariantChecksumCorrupted:         "wrong CRC",
		VariantLengthPayloadInconsistent: "length/payload mismatch",
		VariantOversizedPayload:          "oversized payload",
	}
	for _, v := range Variants() {
		if v.String() != want[v] {
			t.Fatalf("variant %d: label %q want %q", v, v.String(), want[v])
		}
	}
	if Variant(99).String() != "unknown" {
		t.Fatalf("out-of-range variant label: %q", Variant(99).String())
	}
}

func TestMissingStartDropsOnlyStartMarker(t *testing.T) {
	in := newTestInjector(1)
	payload := []byte("probe")
	faulty := in.MissingStart(payload)
	well := DefaultCodec().Encode(payload)
	if !bytes.Equal(faulty, well[1:]) {
		t.Fatalf("expected well-formed frame minus start marker:\n got %X\nwant %X", faulty, well[1:])
	}
	if faulty[len(faulty)-1] != DefaultEndMarker {
		t.Fatalf("end marker must survive: %X", faulty)
	}
	if _, err := DefaultCodec().Decode(faulty, DefaultLimits()); !errors.Is(err, ErrMissingStart) {
		t.Fatalf("expected ErrMissingStart, got %v", err)
	}
}

func TestMissingEndVector(t *testing.T) {
	in := newTestInjector(1)
	faulty := in.MissingEnd([]byte("AB"))
	crc := Checksum([]byte("AB"))
	want := []byte{0x02, 0x00, 0x02, 0x41, 0x42, byte(crc >> 8), byte(crc)}
	if len(faulty) != 7 {
		t.Fatalf("frame length %d want 7", len(faulty))
	}
	if !bytes.Equal(faulty, want) {
		t.Fatalf("frame mismatch:\n got %X\nwant %X", faulty, want)
	}
	if faulty[len(faulty)-1] == DefaultEndMarker {
		t.Fatalf("end marker unexpectedly present")
	}
	if _, err := DefaultCodec().Decode(faulty, DefaultLimits()); !errors.Is(err, ErrAwaitingEnd) {
		t.Fatalf("expected ErrAwaitingEnd, got %v", err)
	}
}

func TestLengthMismatchRandomBounds(t *testing.T) {
	in := newTestInjector(7)
	payload := []byte("0123456789") // true length 10
	well := DefaultCodec().Encode(payload)
	sawSkewed := false
	for i := 0; i < 1000; i++ {
		faulty := in.LengthMismatchRandom(payload)
		declared := int(binary.BigEndian.Uint16(faulty[1:3]))
		if declared < len(payload)+DefaultDeltaMin || declared > len(payload)+DefaultDeltaMax {
			t.Fatalf("sample %d: declared length %d outside [%d,%d]",
				i, declared, len(payload)+DefaultDeltaMin, len(payload)+DefaultDeltaMax)
		}
		if declared != len(payload) {
			sawSkewed = true
		}
		// Only the length field may differ from the well-formed frame.
		if len(faulty) != len(well) {
			t.Fatalf("sample %d: frame length changed: %d vs %d", i, len(faulty), len(well))
		}
		if faulty[0] != well[0] || !bytes.Equal(faulty[3:], well[3:]) {
			t.Fatalf("sample %d: bytes beyond length field changed", i)
		}
	}
	if !sawSkewed {
		t.Fatalf("1000 samples never skewed the length field")
	}
}

func TestLengthMismatchRandomWrapsModulo(t *testing.T) {
	// Negative delta on an empty payload must wrap mod 65536.
	in := newTestInjector(3, WithDeltaBounds(-3, -1))
	faulty := in.LengthMismatchRandom(nil)
	declared := binary.BigEndian.Uint16(faulty[1:3])
	if declared < 65533 {
		t.Fatalf("declared length %d did not wrap", declared)
	}
}

func TestLengthMismatchRandomReproducible(t *testing.T) {
	payload := []byte("seeded")
	first := newTestInjector(42).LengthMismatchRandom(payload)
	second := newTestInjector(42).LengthMismatchRandom(payload)
	if !bytes.Equal(first, second) {
		t.Fatalf("same seed produced different frames:\n%X\n%X", first, second)
	}
}

func TestChecksumCorruptedKeepsStructure(t *testing.T) {
	in := newTestInjector(1)
	payload := []byte("checksum target")
	faulty := in.ChecksumCorrupted(payload)
	well := DefaultCodec().Encode(payload)
	if len(faulty) != len(well) {
		t.Fatalf("frame length changed: %d vs %d", len(faulty), len(well))
	}
	if !bytes.Equal(faulty[:len(faulty)-3], well[:len(well)-3]) {
		t.Fatalf("bytes before crc field changed")
	}
	if faulty[len(faulty)-1] != DefaultEndMarker {
		t.Fatalf("end marker changed")
	}
	got := binary.BigEndian.Uint16(faulty[len(faulty)-3 : len(faulty)-1])
	if got != Checksum(payload)^0xA5A5 {
		t.Fatalf("crc field 0x%04X want 0x%04X", got, Checksum(payload)^0xA5A5)
	}
	if _, err := DefaultCodec().Decode(faulty, DefaultLimits()); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestLengthPayloadInconsistentDeclaresFiveExtra(t *testing.T) {
	in := newTestInjector(1)
	payload := []byte("short body")
	faulty := in.LengthPayloadInconsistent(payload)
	well := DefaultCodec().Encode(payload)
	declared := int(binary.BigEndian.Uint16(faulty[1:3]))
	if declared != len(payload)+5 {
		t.Fatalf("declared length %d want %d", declared, len(payload)+5)
	}
	if len(faulty) != len(well) || !bytes.Equal(faulty[3:], well[3:]) {
		t.Fatalf("bytes beyond length field changed")
	}
	if _, err := DefaultCodec().Decode(faulty, DefaultLimits()); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestOversizedPayloadDefaultFiller(t *testing.T) {
	in := newTestInjector(1)
	faulty := in.OversizedPayload(nil)
	payload, err := DefaultCodec().Decode(faulty, Limits{MaxPayloadBytes: 65535})
	if err != nil {
		t.Fatalf("oversized frame must be structurally well-formed: %v", err)
	}
	if len(payload) != DefaultOversizeTarget {
		t.Fatalf("payload length %d want %d", len(payload), DefaultOversizeTarget)
	}
	for i, b := range payload {
		if b != 'A' {
			t.Fatalf("filler byte %d is 0x%02X", i, b)
		}
	}
	if _, err := DefaultCodec().Decode(faulty, DefaultLimits()); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge under receiver limits, got %v", err)
	}
}

func TestOversizedPayloadRepeatsSeedPayload(t *testing.T) {
	in := newTestInjector(1, WithOversizeTarget(10))
	faulty := in.OversizedPayload([]byte("ABC"))
	payload, err := DefaultCodec().Decode(faulty, Limits{MaxPayloadBytes: 65535})
	if err != nil {
		t.Fatalf("decode oversized frame: %v", err)
	}
	if string(payload) != "ABCABCABCA" {
		t.Fatalf("payload %q want repeated/truncated seed", payload)
	}
}

func TestWithOversizeTargetClampsToLengthField(t *testing.T) {
	in := newTestInjector(1, WithOversizeTarget(70000))
	faulty := in.OversizedPayload(nil)
	if declared := int(binary.BigEndian.Uint16(faulty[1:3])); declared != 65535 {
		t.Fatalf("declared length %d want 65535", declared)
	}
	payload, err := DefaultCodec().Decode(faulty, Limits{MaxPayloadBytes: 65535})
	if err != nil {
		t.Fatalf("clamped frame must stay well-formed: %v", err)
	}
	if len(payload) != 65535 {
		t.Fatalf("payload length %d want 65535", len(payload))
	}

	in = newTestInjector(1, WithOversizeTarget(0))
	if got := len(in.OversizedPayload(nil)); got != DefaultOversizeTarget+FrameOverhead {
		t.Fatalf("non-positive target must keep the default, frame length %d", got)
	}
}

func TestBuildDispatch(t *testing.T) {
	in := newTestInjector(1)
	payload := []byte("dispatch")
	for _, v := range Variants() {
		framed, err := in.Build(v, payload)
		if err != nil {
			t.Fatalf("build %s: %v", v, err)
		}
		if len(framed) == 0 {
			t.Fatalf("build %s: empty frame", v)
		}
	}
	if _, err := in.Build(Variant(99), payload); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestEachVariantBreaksExactlyOneInvariant(t *testing.T) {
	in := newTestInjector(11)
	payload := []byte("single cause")
	codec := DefaultCodec()
	for _, v := range Variants() {
		framed, err := in.Build(v, payload)
		if err != nil {
			t.Fatalf("build %s: %v", v, err)
		}
		if bytes.Equal(framed, codec.Encode(payload)) && v != VariantLengthMismatchRandom {
			t.Fatalf("%s: frame identical to well-formed encoding", v)
		}
		// Oversized frames are structurally valid; they only trip the
		// receiver's size policy.
		if v == VariantOversizedPayload {
			continue
		}
		if _, err := codec.Decode(framed, DefaultLimits()); err == nil {
			// A zero delta is the one legal outcome of the random skew.
			if v == VariantLengthMismatchRandom {
				continue
			}
			t.Fatalf("%s: reference decoder accepted faulty frame", v)
		}
	}
}
