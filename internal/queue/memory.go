package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stackmill/accessd/internal/audit"
)

// MemoryQueue implements an in-memory audit event queue. The events
// channel is never closed: concurrent senders may be blocked on it when
// Close runs, so closure is signaled through done instead. Events
// buffered at close time stay retrievable until the queue is empty.
type MemoryQueue struct {
	events chan *audit.Event
	done   chan struct{}
	once   sync.Once
}

// NewMemoryQueue creates a new in-memory queue
func NewMemoryQueue(bufferSize int) *MemoryQueue {
	if bufferSize <= 0 {
		bufferSize = 256
	}

	q := &MemoryQueue{
		events: make(chan *audit.Event, bufferSize),
		done:   make(chan struct{}),
	}

	slog.Info("Initialized in-memory audit queue", "buffer_size", bufferSize)
	return q
}

// Enqueue adds an event to the queue
func (q *MemoryQueue) Enqueue(ctx context.Context, ev *audit.Event) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.events <- ev:
		slog.Debug("Audit event enqueued", "action", ev.Action)
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("queue is full, could not enqueue event %q", ev.Action)
	}
}

// Dequeue retrieves the next event from the queue. After Close it keeps
// returning buffered events and reports ErrClosed only once drained.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*audit.Event, error) {
	select {
	case ev := <-q.events:
		return ev, nil
	default:
	}

	select {
	case ev := <-q.events:
		return ev, nil
	case <-q.done:
		select {
		case ev := <-q.events:
			return ev, nil
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close marks the queue closed. Safe to call more than once and safe
// while senders are blocked on a full buffer.
func (q *MemoryQueue) Close() error {
	q.once.Do(func() {
		close(q.done)
		slog.Info("Memory queue closed")
	})
	return nil
}
