// Package session owns the connected-transport state machine: it is the
// only component allowed to hold or write the open serial handle.
//
// Lifecycle: Disconnected --(Connect)--> Connected --(sends/repeat)-->
// Connected --(Close)--> Closed. Close is the single release path for the
// transport and is idempotent.
package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danmuck/uartctl/internal/logsink"
	"github.com/danmuck/uartctl/internal/observability"
	"github.com/danmuck/uartctl/internal/protocol"
	"github.com/danmuck/uartctl/internal/transport"
)

// State is the session lifecycle position.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrNotConnected     = errors.New("session: not connected")
	ErrAlreadyConnected = errors.New("session: already connected")
	ErrClosed           = errors.New("session: closed")
	ErrNothingSent      = errors.New("session: nothing sent yet")
	ErrPayloadTooLarge  = errors.New("session: payload exceeds configured maximum")
	ErrWriteFailed      = errors.New("session: transport write failed")
)

// LabelWellFormed identifies a non-fault send in reports and logs.
const LabelWellFormed = "valid frame"

// Config carries the session's policy knobs explicitly; there is no
// global configuration state.
type Config struct {
	MaxPayloadBytes int
}

func DefaultConfig() Config {
	return Config{MaxPayloadBytes: protocol.DefaultLimits().MaxPayloadBytes}
}

// Report describes one completed send.
type Report struct {
	Label string
	Bytes int
}

// Session drives frame and fault sends over one exclusively-owned
// transport. It is single-threaded by design; no internal locking.
type Session struct {
	cfg      Config
	codec    protocol.Codec
	injector *protocol.Injector
	sink     *logsink.Sink
	logger   zerolog.Logger

	state     State
	tr        transport.Transport
	lastBytes []byte
	lastLabel string
}

func New(cfg Config, codec protocol.Codec, injector *protocol.Injector, sink *logsink.Sink, logger zerolog.Logger) *Session {
	return &Session{
		cfg:      cfg,
		codec:    codec,
		injector: injector,
		sink:     sink,
		logger:   logger,
		state:    StateDisconnected,
	}
}

func (s *Session) State() State {
	return s.state
}

// TransportName reports the connected port for display; empty when not
// connected.
func (s *Session) TransportName() string {
	if s.tr == nil {
		return ""
	}
	return s.tr.Name()
}

// Connect takes ownership of tr. A closed session stays closed.
func (s *Session) Connect(tr transport.Transport) error {
	switch s.state {
	case StateConnected:
		return ErrAlreadyConnected
	case StateClosed:
		return ErrClosed
	}
	s.tr = tr
	s.state = StateConnected
	s.logger.Info().Str("port", tr.Name()).Msg("session connected")
	s.note(fmt.Sprintf("Connected to %s.", tr.Name()))
	return nil
}

// SendFrame encodes payload as a well-formed frame and writes it. The
// payload cap is checked here, before encoding; the codec itself never
// enforces it.
func (s *Session) SendFrame(payload []byte) (Report, error) {
	if err := s.requireConnected(); err != nil {
		return Report{}, err
	}
	if len(payload) > s.cfg.MaxPayloadBytes {
		s.note(fmt.Sprintf("Rejected payload of %d bytes (max %d).", len(payload), s.cfg.MaxPayloadBytes))
		return Report{}, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), s.cfg.MaxPayloadBytes)
	}
	return s.send(s.codec.Encode(payload), LabelWellFormed)
}

// SendFault builds the named malformed frame over payload and writes it.
func (s *Session) SendFault(v protocol.Variant, payload []byte) (Report, error) {
	if err := s.requireConnected(); err != nil {
		return Report{}, err
	}
	framed, err := s.injector.Build(v, payload)
	if err != nil {
		return Report{}, err
	}
	return s.send(framed, v.String())
}

// RepeatLast re-sends the exact bytes of the previous send without
// rebuilding them, so a random length delta is not redrawn.
func (s *Session) RepeatLast() (Report, error) {
	if err := s.requireConnected(); err != nil {
		return Report{}, err
	}
	if s.lastBytes == nil {
		return Report{}, ErrNothingSent
	}
	return s.write(s.lastBytes, s.lastLabel+" (repeat)")
}

// Close releases the transport. Safe to call on any state, any number of
// times; every exit path funnels through here.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if s.tr == nil {
		return nil
	}
	name := s.tr.Name()
	err := s.tr.Close()
	s.tr = nil
	s.note("Connection closed.")
	if err != nil {
		s.logger.Warn().Err(err).Str("port", name).Msg("transport close failed")
		return fmt.Errorf("session: close transport: %w", err)
	}
	s.logger.Info().Str("port", name).Msg("session closed")
	return nil
}

func (s *Session) requireConnected() error {
	switch s.state {
	case StateConnected:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotConnected
	}
}

// send records the built frame for repeat-last, then writes it. The frame
// is recorded even when the write fails so the user can retry the same
// bytes.
func (s *Session) send(framed []byte, label string) (Report, error) {
	s.lastBytes = framed
	s.lastLabel = label
	return s.write(framed, label)
}

func (s *Session) write(framed []byte, label string) (Report, error) {
	n, err := s.tr.Write(framed)
	if err != nil {
		observability.RecordWriteFailure(label)
		s.logger.Error().Err(err).Str("variant", label).Msg("transport write failed")
		s.note(fmt.Sprintf("Serial write error: %v", err))
		return Report{Label: label, Bytes: n}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	observability.RecordFrameSent(label, n)
	s.logger.Info().Str("variant", label).Int("bytes", n).Msg("frame sent")
	s.note(fmt.Sprintf("Sent test frame: %s (%d bytes)", label, n))
	return Report{Label: label, Bytes: n}, nil
}

// note mirrors an event into the append-only log. Sink failures are
// reported through the logger but never fail the operation.
func (s *Session) note(msg string) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Append(msg); err != nil {
		observability.RecordLogSinkFailure()
		s.logger.Warn().Err(err).Msg("event log append failed")
	}
}
