package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueRunsTasks(t *testing.T) {
	q := NewQueue(Config{Workers: 2, QueueSize: 8})
	if err := q.Enqueue(Task{Name: "early", Run: func(context.Context) error { return nil }}); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	q.Start(context.Background())

	var runs int32
	for i := 0; i < 5; i++ {
		err := q.Enqueue(Task{Name: "count", Run: func(context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		}})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := atomic.LoadInt32(&runs); got != 5 {
		t.Fatalf("expected 5 runs, got %d", got)
	}

	if err := q.Enqueue(Task{Name: "late", Run: func(context.Context) error { return nil }}); !errors.Is(err, ErrShuttingDown) {
		t.Fatalf("expected ErrShuttingDown, got %v", err)
	}
}

func TestQueueRetries(t *testing.T) {
	q := NewQueue(Config{Workers: 1})
	q.Start(context.Background())

	var attempts int32
	err := q.Enqueue(Task{
		Name:    "flaky",
		Retries: 2,
		Run: func(context.Context) error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("not yet")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var panics int32
	err = q.Enqueue(Task{Name: "panics", Run: func(context.Context) error {
		atomic.AddInt32(&panics, 1)
		panic("boom")
	}})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if got := atomic.LoadInt32(&panics); got != 1 {
		t.Fatalf("expected panicking task to run once, got %d", got)
	}
}
