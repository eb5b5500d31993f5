package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one security-relevant step in a connection's identity lifecycle.
//
// UserID is the token subject when one is known. It is never populated from the
// untrusted fallback channel.
type Event struct {
	Timestamp   time.Time         `json:"timestamp"`
	EventType   string            `json:"event_type"`
	ConnID      string            `json:"conn_id"`
	UserID      string            `json:"user_id,omitempty"`
	Database    string            `json:"database,omitempty"`
	Application string            `json:"application,omitempty"`
	ClientAddr  string            `json:"client_addr,omitempty"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events. The dispatcher falls back to it when no sink is set.
type NoOpSink struct{}

// Emit discards event.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink hands events to a consumer goroutine, typically a test or an embedding
// host that forwards them to its own log pipeline.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink returns a sink backed by a channel of the given capacity. A capacity
// below one is raised to one.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan Event, max(buffer, 1))}
}

// Emit blocks until the consumer has room or ctx ends. An already-ended ctx never
// enqueues, even when the channel has room.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	if ctx.Err() != nil {
		return
	}
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receive side of the channel.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// Pending returns the number of events waiting for the consumer.
func (s *ChannelSink) Pending() int {
	return len(s.events)
}

// JSONWriterSink appends one JSON record per event to w. Each record reaches w in a
// single Write, so lines from concurrent engines sharing a file do not interleave.
type JSONWriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	buf    bytes.Buffer
	failed atomic.Uint64
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{w: w}
}

// Emit encodes event and writes it. Encoding and write errors are counted, not returned.
func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.w == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Reset()
	enc := json.NewEncoder(&s.buf)
	// Application names and client addresses are host-supplied text, not HTML.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		s.failed.Add(1)
		return
	}
	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		s.failed.Add(1)
	}
}

// Failed returns how many events could not be encoded or written.
func (s *JSONWriterSink) Failed() uint64 {
	return s.failed.Load()
}
