// Package payload produces the opaque bytes carried inside frames.
//
// The framing core must not assume any internal structure of what a
// Producer returns; it only requires a finite byte sequence of known
// length.
package payload

import (
	"encoding/json"
	"fmt"
	"time"
)

// Producer turns user text into the payload bytes for one frame.
type Producer interface {
	Build(text string) ([]byte, error)
}

// Message is the default body shape: a millisecond timestamp plus the
// user's text.
type Message struct {
	TimestampMS int64  `json:"timestamp_ms"`
	Data        string `json:"data"`
}

// JSONProducer serializes Message bodies. Now is overridable for tests;
// nil means time.Now.
type JSONProducer struct {
	Now func() time.Time
}

func (p JSONProducer) Build(text string) ([]byte, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	body, err := json.Marshal(Message{TimestampMS: now().UnixMilli(), Data: text})
	if err != nil {
		return nil, fmt.Errorf("payload: marshal message: %w", err)
	}
	return body, nil
}

// ControlText is the default text for a valid frame when the user supplies
// none.
func ControlText(now time.Time) string {
	return fmt.Sprintf("control-%d", now.UnixMilli())
}

// TestText is the default text for a fault-variant frame, tagged so the
// receiver side can attribute what it rejected.
func TestText(tag string, now time.Time) string {
	return fmt.Sprintf("test_%s_%d", tag, now.UnixMilli())
}
