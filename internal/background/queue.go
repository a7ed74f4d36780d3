// Package background runs fire-and-forget maintenance tasks, such as removing
// uploads that no content document references any more.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pagecraft-backend/pkg/logger"
)

var (
	ErrNotStarted   = errors.New("task queue not started")
	ErrShuttingDown = errors.New("task queue is shutting down")
	ErrQueueFull    = errors.New("task queue is full")
)

type Config struct {
	Workers   int
	QueueSize int
}

// Task is retried up to Retries extra times, waiting Backoff between attempts.
type Task struct {
	Name    string
	Run     func(ctx context.Context) error
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

type queuedTask struct {
	task    Task
	attempt int
}

type Queue struct {
	cfg Config

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	closed  bool

	tasks    chan queuedTask
	workers  sync.WaitGroup
	inflight sync.WaitGroup
}

var (
	metricsOnce  sync.Once
	taskRuns     *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		taskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagecraft",
			Subsystem: "background",
			Name:      "task_runs_total",
			Help:      "Background task attempts by outcome",
		}, []string{"task", "status"})

		taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pagecraft",
			Subsystem: "background",
			Name:      "task_duration_seconds",
			Help:      "Duration of background task attempts",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"})
	})
}

func NewQueue(cfg Config) *Queue {
	initMetrics()

	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Queue{cfg: cfg, tasks: make(chan queuedTask, cfg.QueueSize)}
}

func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}

	q.ctx, q.cancel = context.WithCancel(ctx)
	q.started = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work()
	}
}

// Enqueue never blocks; a full queue is reported to the caller.
func (q *Queue) Enqueue(task Task) error {
	if task.Name == "" || task.Run == nil {
		return errors.New("task name and runner are required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started {
		return ErrNotStarted
	}
	if q.closed {
		return ErrShuttingDown
	}

	q.inflight.Add(1)
	select {
	case q.tasks <- queuedTask{task: task, attempt: 1}:
		return nil
	default:
		q.inflight.Done()
		return ErrQueueFull
	}
}

func (q *Queue) work() {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case item := <-q.tasks:
			q.runWithRetries(item)
		}
	}
}

func (q *Queue) runWithRetries(item queuedTask) {
	defer q.inflight.Done()
	for {
		err := q.attempt(item)
		if err == nil {
			return
		}
		fields := map[string]interface{}{"task": item.task.Name, "attempt": item.attempt}
		if errors.Is(err, context.Canceled) || item.attempt > item.task.Retries {
			logger.Error(err, "Background task gave up", fields)
			return
		}
		logger.Warn("Background task failed, retrying", fields)

		item.attempt++
		if item.task.Backoff > 0 {
			timer := time.NewTimer(item.task.Backoff)
			select {
			case <-timer.C:
			case <-q.ctx.Done():
				timer.Stop()
				return
			}
		}
	}
}

func (q *Queue) attempt(item queuedTask) (err error) {
	start := time.Now()
	status := "success"

	ctx := q.ctx
	if item.task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, item.task.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			status = "failure"
		}
		taskDuration.WithLabelValues(item.task.Name).Observe(time.Since(start).Seconds())
		taskRuns.WithLabelValues(item.task.Name, status).Inc()
	}()

	return item.task.Run(ctx)
}

// Shutdown stops accepting tasks and waits for in-flight ones until ctx ends.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.started || q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	cancel := q.cancel
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.inflight.Wait()
		cancel()
		q.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}
