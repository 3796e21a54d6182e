// Package logsink appends one timestamped line per session event to a
// file. It is a best-effort side channel: append failures are returned to
// the caller for reporting but must never abort the session.
package logsink

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Config holds the sink destination and rotation policy.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

func DefaultConfig() Config {
	return Config{
		Path:       "log.txt",
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// Sink is an append-only event log writing `[YYYY-MM-DD HH:MM:SS] <msg>`
// lines.
type Sink struct {
	w   io.Writer
	now func() time.Time
}

// Open returns a sink appending to cfg.Path with size-based rotation.
func Open(cfg Config) *Sink {
	return &Sink{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		},
		now: time.Now,
	}
}

// NewWithWriter builds a sink over an arbitrary writer. A nil now falls
// back to time.Now.
func NewWithWriter(w io.Writer, now func() time.Time) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{w: w, now: now}
}

// Append writes one event line.
func (s *Sink) Append(msg string) error {
	line := fmt.Sprintf("[%s] %s\n", s.now().Format(timeLayout), msg)
	if _, err := io.WriteString(s.w, line); err != nil {
		return fmt.Errorf("logsink: append: %w", err)
	}
	return nil
}

// Close releases the underlying file if the destination holds one.
func (s *Sink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
