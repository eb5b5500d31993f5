package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type blockingSink struct {
	release chan struct{}
	got     chan Event
}

func (s *blockingSink) Emit(_ context.Context, e Event) {
	<-s.release
	s.got <- e
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports drops")
	}
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)

	d.Emit(context.Background(), Event{EventType: "key_configured", ConnID: "c1"})
	d.Emit(context.Background(), Event{EventType: "session_init_success", ConnID: "c1"})
	d.Close()

	for _, want := range []string{"key_configured", "session_init_success"} {
		select {
		case got := <-sink.Events():
			if got.EventType != want {
				t.Fatalf("got %q, want %q", got.EventType, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), got: make(chan Event, 8)}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "e"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}
	close(sink.release)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "after-close"})
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{EventType: "connection_closed", ConnID: "c1", Success: true})

	var decoded Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if decoded.ConnID != "c1" || decoded.EventType != "connection_closed" {
		t.Fatalf("unexpected event %+v", decoded)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Fatal("expected newline-terminated record")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

type countingWriter struct {
	writes int
	data   bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.data.Write(p)
}

func TestJSONWriterSinkSingleWriteNoHTMLEscaping(t *testing.T) {
	w := &countingWriter{}
	sink := NewJSONWriterSink(w)
	sink.Emit(context.Background(), Event{EventType: "key_configured", Application: "app<&>"})
	sink.Emit(context.Background(), Event{EventType: "connection_closed"})

	if w.writes != 2 {
		t.Fatalf("writes = %d, want one per event", w.writes)
	}
	if !bytes.Contains(w.data.Bytes(), []byte(`"application":"app<&>"`)) {
		t.Fatalf("unexpected encoding: %s", w.data.Bytes())
	}
	if lines := bytes.Count(w.data.Bytes(), []byte("\n")); lines != 2 {
		t.Fatalf("lines = %d", lines)
	}
	if sink.Failed() != 0 {
		t.Fatalf("Failed() = %d", sink.Failed())
	}
}

func TestJSONWriterSinkCountsWriteFailures(t *testing.T) {
	sink := NewJSONWriterSink(failingWriter{})
	sink.Emit(context.Background(), Event{EventType: "a"})
	sink.Emit(context.Background(), Event{EventType: "b"})
	if sink.Failed() != 2 {
		t.Fatalf("Failed() = %d, want 2", sink.Failed())
	}
}

func TestChannelSinkSkipsEndedContext(t *testing.T) {
	sink := NewChannelSink(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink.Emit(ctx, Event{EventType: "late"})
	if sink.Pending() != 0 {
		t.Fatal("ended context must not enqueue")
	}

	sink.Emit(context.Background(), Event{EventType: "on time"})
	if sink.Pending() != 1 {
		t.Fatalf("Pending() = %d", sink.Pending())
	}
	if ev := <-sink.Events(); ev.EventType != "on time" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDispatcherCountsDeliveredAndCanceled(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	d.Emit(context.Background(), Event{EventType: "a"})
	d.Emit(context.Background(), Event{EventType: "b"})
	d.Close()
	if got := d.Delivered(); got != 2 {
		t.Fatalf("Delivered() = %d, want 2", got)
	}

	blocked := &blockingSink{release: make(chan struct{}), got: make(chan Event, 4)}
	d = NewDispatcher(Config{Enabled: true, BufferSize: 1}, blocked)
	d.Emit(context.Background(), Event{EventType: "fills sink"})
	// Wait until the first event left the buffer.
	deadline := time.Now().Add(time.Second)
	for len(d.ch) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	d.Emit(context.Background(), Event{EventType: "fills buffer"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Emit(ctx, Event{EventType: "canceled"})
	if d.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", d.Dropped())
	}
	close(blocked.release)
	d.Close()
}
