package protocol

import "errors"

var (
	ErrMissingStart     = errors.New("protocol: missing start marker")
	ErrAwaitingEnd      = errors.New("protocol: input ended before end marker")
	ErrLengthMismatch   = errors.New("protocol: length field does not match frame body")
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")
	ErrPayloadTooLarge  = errors.New("protocol: payload too large")
	ErrTruncated        = errors.New("protocol: truncated frame")
	ErrUnknownVariant   = errors.New("protocol: unknown fault variant")
)
