package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stackmill/accessd/internal/audit"
	"github.com/valkey-io/valkey-go"
)

// ValkeyQueue implements a distributed audit queue using Valkey, so
// multiple accessd replicas can share one audit writer. Events still
// queued at close time stay in the Valkey list for the next start.
type ValkeyQueue struct {
	client valkey.Client
	key    string // List key: "accessd:audit"

	mu     sync.Mutex
	closed bool
}

// NewValkeyQueue creates a new Valkey-backed queue
func NewValkeyQueue(addr string) (*ValkeyQueue, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pingCmd := client.B().Ping().Build()
	if err := client.Do(ctx, pingCmd).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	q := &ValkeyQueue{
		client: client,
		key:    "accessd:audit",
	}

	slog.Info("Initialized Valkey audit queue", "address", addr, "queue_key", q.key)
	return q, nil
}

// Enqueue pushes a JSON-encoded event onto the list (RPUSH for FIFO)
func (q *ValkeyQueue) Enqueue(ctx context.Context, ev *audit.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	cmd := q.client.B().Rpush().Key(q.key).Element(string(data)).Build()
	if err := q.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to push event to Valkey: %w", err)
	}

	slog.Debug("Audit event enqueued", "action", ev.Action)
	return nil
}

// Dequeue blocks up to one second waiting for an event. Returns (nil, nil)
// when the poll interval elapses with nothing queued, and ErrClosed once
// the queue is closed.
func (q *ValkeyQueue) Dequeue(ctx context.Context) (*audit.Event, error) {
	if q.isClosed() {
		return nil, ErrClosed
	}

	cmd := q.client.B().Blpop().Key(q.key).Timeout(1).Build()
	res, err := q.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		if q.isClosed() {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("failed to pop event from Valkey: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}

	var ev audit.Event
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit event: %w", err)
	}
	return &ev, nil
}

func (q *ValkeyQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close closes the Valkey connection
func (q *ValkeyQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.client.Close()
	slog.Info("Valkey queue closed")
	return nil
}
