// Package protocol owns the UART wire contract and its conformance probes.
//
// Ownership boundary:
// - CRC-16 checksum primitive
// - frame encode/decode primitives
// - payload limits policy
// - malformed-frame builders for receiver conformance testing
package protocol
