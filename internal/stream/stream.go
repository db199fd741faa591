// Package stream implements the ordered result stream one pipeline run
// pushes its stage events onto.
package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/podiumlab/podium/internal/domain"
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("stream closed")

// Stream is an append-only sequence of StageEvents with one consumer.
// Sequence numbers are assigned at emission time under a single lock, so
// the order consumers observe is exactly the order numbers were handed
// out, even when stages finish concurrently. An unbuffered channel gives
// backpressure for free: a slow consumer pauses every emitter.
type Stream struct {
	mu     sync.Mutex
	seq    uint64
	ch     chan domain.StageEvent
	closed bool
}

// New creates a Stream. buffer is the transport's slack; 0 means every
// Emit waits for the consumer.
func New(buffer int) *Stream {
	return &Stream{ch: make(chan domain.StageEvent, buffer)}
}

// Events returns the consumer side. It is closed by Close.
func (s *Stream) Events() <-chan domain.StageEvent {
	return s.ch
}

// Emit assigns the next sequence number to ev and delivers it. It blocks
// while the consumer is slow and returns ctx.Err() if the caller goes
// away first. Events are never silently dropped: the error tells the
// producer delivery did not happen.
func (s *Stream) Emit(ctx context.Context, ev domain.StageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.seq++
	ev.Seq = s.seq
	select {
	case s.ch <- ev:
		return nil
	case <-ctx.Done():
		// The number was consumed but the event never delivered; the gap
		// is harmless because the stream is about to be torn down.
		return ctx.Err()
	}
}

// CloseWith emits a terminal event for err (nil for normal completion)
// and closes the stream. Safe to call once per stream.
func (s *Stream) CloseWith(ctx context.Context, err error) {
	_ = s.Emit(ctx, domain.TerminalEvent(err))
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
