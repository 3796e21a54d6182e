// Package transport owns the byte-oriented link the session driver writes
// frames to. Port discovery and the serial implementation live here; the
// session only sees the Transport boundary.
package transport

import (
	"errors"
	"time"
)

// ErrNoPorts reports an empty enumeration; callers re-prompt rather than
// fail.
var ErrNoPorts = errors.New("transport: no serial ports detected")

// Transport is one open, exclusively-owned byte channel.
type Transport interface {
	Write(p []byte) (int, error)
	Close() error
	Name() string
}

// Config holds serial link settings.
type Config struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// DefaultConfig matches the embedded receiver's UART setup.
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		ReadTimeout: time.Second,
	}
}
