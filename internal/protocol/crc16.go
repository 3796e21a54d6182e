package protocol

// CRC-16/ARC: reflected polynomial 0x8005, init 0xFFFF, no final xor.
const (
	crcInit uint16 = 0xFFFF
	crcPoly uint16 = 0xA001
)

// Checksum computes the 16-bit integrity code over p. It is pure and
// deterministic, runs in linear time, and returns crcInit for empty input.
// Known vector: Checksum([]byte("123456789")) == 0xBB3D.
func Checksum(p []byte) uint16 {
	crc := crcInit
	for _, b := range p {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
