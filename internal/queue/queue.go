package queue

import (
	"context"
	"errors"

	"github.com/stackmill/accessd/internal/audit"
)

// ErrClosed is returned when dequeueing from a closed queue.
var ErrClosed = errors.New("queue closed")

// Queue transports audit events from the request path to the worker that
// persists them. Implementations also satisfy audit.Sink.
type Queue interface {
	// Enqueue adds an event to the queue
	Enqueue(ctx context.Context, ev *audit.Event) error

	// Dequeue retrieves the next event; a nil event with nil error means
	// nothing was available within the poll interval
	Dequeue(ctx context.Context) (*audit.Event, error)

	// Close closes the queue and releases resources
	Close() error
}
