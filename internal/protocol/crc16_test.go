package protocol

import "testing"

func TestChecksumKnownVectors(t *testing.T) {
	if got := Checksum(nil); got != 0xFFFF {
		t.Fatalf("empty input: got 0x%04X want 0xFFFF", got)
	}
	if got := Checksum([]byte{}); got != 0xFFFF {
		t.Fatalf("empty slice: got 0x%04X want 0xFFFF", got)
	}
	if got := Checksum([]byte("123456789")); got != 0xBB3D {
		t.Fatalf("check vector: got 0x%04X want 0xBB3D", got)
	}
}

func TestChecksumDeterministic(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		{0x02, 0x03}, // marker values are ordinary payload bytes
		[]byte("hello"),
		make([]byte, 1024),
	}
	for _, in := range inputs {
		first := Checksum(in)
		second := Checksum(in)
		if first != second {
			t.Fatalf("checksum not deterministic for %v: 0x%04X vs 0x%04X", in, first, second)
		}
	}
}

func TestChecksumSensitiveToSingleByte(t *testing.T) {
	base := []byte("conformance")
	flipped := append([]byte(nil), base...)
	flipped[3] ^= 0x01
	if Checksum(base) == Checksum(flipped) {
		t.Fatalf("single-byte flip not reflected in checksum")
	}
}
