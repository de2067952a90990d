package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"adstudio/internal/domain"
)

const defaultEventBuffer = 64

// EventStream carries progress events from a running batch to one consumer in
// emission order. Emit blocks while the buffer is full; events are never
// dropped while the consumer is attached.
type EventStream struct {
	ctx    context.Context
	ch     chan domain.ProgressEvent
	mu     sync.RWMutex
	closed bool
}

// NewEventStream returns a stream with the given buffer. ctx marks the
// consumer's lifetime: once it is done, Emit stops blocking and discards.
func NewEventStream(ctx context.Context, buffer int) *EventStream {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &EventStream{ctx: ctx, ch: make(chan domain.ProgressEvent, buffer)}
}

// Emit appends ev to the stream. It returns false when the stream is closed
// or the consumer has gone away.
func (s *EventStream) Emit(ev domain.ProgressEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Close ends the stream. It is safe to call more than once.
func (s *EventStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Events is the receive side of the stream.
func (s *EventStream) Events() <-chan domain.ProgressEvent {
	return s.ch
}

// Stream runs req on runner in the background and returns the event stream.
// The stream is closed after the terminal event.
func Stream(ctx context.Context, runner BatchRunner, req domain.BatchRequest, buffer int) *EventStream {
	stream := NewEventStream(ctx, buffer)
	go func() {
		defer stream.Close()
		_ = runner.Run(ctx, req, func(ev domain.ProgressEvent) {
			stream.Emit(ev)
		})
	}()
	return stream
}

// NDJSONWriter encodes events as newline-delimited JSON, flushing after each
// line when flush is set.
type NDJSONWriter struct {
	enc   *json.Encoder
	flush func()
}

func NewNDJSONWriter(w io.Writer, flush func()) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONWriter{enc: enc, flush: flush}
}

// Write encodes one event as a single line.
func (w *NDJSONWriter) Write(ev domain.ProgressEvent) error {
	if err := w.enc.Encode(ev); err != nil {
		return err
	}
	if w.flush != nil {
		w.flush()
	}
	return nil
}
