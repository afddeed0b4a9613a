package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stackmill/accessd/internal/audit"
)

func TestMemoryQueue_RoundTrip(t *testing.T) {
	q := NewMemoryQueue(4)
	defer q.Close()
	ctx := context.Background()

	ev := &audit.Event{
		UserID:    uuid.New(),
		Action:    audit.ActionCreateGroup,
		Resource:  "group/1",
		Timestamp: time.Now().UTC(),
	}
	if err := q.Enqueue(ctx, ev); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got.Action != ev.Action || got.Resource != ev.Resource {
		t.Errorf("dequeued %+v, want %+v", got, ev)
	}
}

func TestMemoryQueue_FIFO(t *testing.T) {
	q := NewMemoryQueue(8)
	defer q.Close()
	ctx := context.Background()

	for _, action := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, &audit.Event{Action: action}); err != nil {
			t.Fatalf("enqueue %q: %v", action, err)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		ev, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if ev.Action != want {
			t.Errorf("got %q, want %q", ev.Action, want)
		}
	}
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(1)
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Close twice is fine
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if err := q.Enqueue(context.Background(), &audit.Event{Action: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("enqueue after close: %v, want ErrClosed", err)
	}
	if _, err := q.Dequeue(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("dequeue after close: %v, want ErrClosed", err)
	}
}

func TestMemoryQueue_CloseWithBlockedSender(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, &audit.Event{Action: "first"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// Second enqueue blocks on the full buffer; Close must unblock it
	// without panicking
	result := make(chan error, 1)
	go func() {
		result <- q.Enqueue(ctx, &audit.Event{Action: "second"})
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("blocked enqueue returned %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked enqueue did not return after close")
	}
}

func TestMemoryQueue_DrainsBufferAfterClose(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	for _, action := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, &audit.Event{Action: action}); err != nil {
			t.Fatalf("enqueue %q: %v", action, err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, want := range []string{"a", "b", "c"} {
		ev, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue after close: %v", err)
		}
		if ev.Action != want {
			t.Errorf("got %q, want %q", ev.Action, want)
		}
	}
	if _, err := q.Dequeue(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("dequeue on drained queue: %v, want ErrClosed", err)
	}
}

func TestMemoryQueue_DequeueHonorsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("dequeue on empty queue: %v, want deadline exceeded", err)
	}
}
