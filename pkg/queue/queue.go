// Package queue runs background jobs on a pluggable driver (in-process
// channel or Redis list) with retries and a failed-job log.
//
//	q := queue.New(queue.NewMemoryDriver(1000))
//	q.Register("order.status_notification", func() queue.Job { return &jobs.OrderStatusNotification{} })
//	_ = q.Dispatch(ctx, &jobs.OrderStatusNotification{OrderID: id})
//	go q.Work(ctx, 2)
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/metrics"
)

// Job is a unit of background work. It is serialised as JSON and
// rebuilt on the worker from the factory registered under JobName.
type Job interface {
	JobName() string
	Handle(ctx context.Context) error
}

// Driver moves serialised jobs between producers and workers.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is ready. A nil payload with a nil error
	// means the wait timed out.
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can hold jobs until later.
type DelayedDriver interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

type envelope struct {
	Type     string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Queue dispatches and processes jobs.
type Queue struct {
	driver   Driver
	failed   FailedStore
	maxRetry int
	backoff  func(attempt int) time.Duration

	mu       sync.RWMutex
	registry map[string]func() Job
}

type Option func(*Queue)

// WithMaxRetry sets how many attempts a job gets before it is failed.
func WithMaxRetry(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxRetry = n
		}
	}
}

// WithBackoff sets the wait between attempts.
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(q *Queue) { q.backoff = f }
}

// WithFailedStore records exhausted jobs somewhere durable.
func WithFailedStore(s FailedStore) Option {
	return func(q *Queue) { q.failed = s }
}

func New(d Driver, opts ...Option) *Queue {
	q := &Queue{
		driver:   d,
		failed:   NewMemoryFailedStore(),
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		registry: map[string]func() Job{},
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Register makes a job type available to workers.
func (q *Queue) Register(name string, factory func() Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.registry[name] = factory
}

// Failed exposes the failed-job log.
func (q *Queue) Failed() FailedStore { return q.failed }

// ─── Dispatch ─────────────────────────────────────────────────────────────────

func (q *Queue) Dispatch(ctx context.Context, job Job) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	if err := q.driver.Push(ctx, raw); err != nil {
		return fmt.Errorf("queue: push %s: %w", job.JobName(), err)
	}
	return nil
}

// DispatchAfter queues job once delay has passed. Drivers without delay
// support fall back to an in-process timer.
func (q *Queue) DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	if dd, ok := q.driver.(DelayedDriver); ok {
		return dd.PushDelayed(ctx, raw, delay)
	}
	time.AfterFunc(delay, func() {
		if err := q.driver.Push(context.Background(), raw); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", job.JobName(), "error", err)
		}
	})
	return nil
}

func encode(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal %s: %w", job.JobName(), err)
	}
	raw, err := json.Marshal(envelope{Type: job.JobName(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return raw, nil
}

// ─── Workers ──────────────────────────────────────────────────────────────────

// Work runs n workers and blocks until ctx is cancelled and every
// in-flight job has returned.
func (q *Queue) Work(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	logger.Info("queue: workers started", "count", n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.loop(ctx)
		}()
	}
	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (q *Queue) loop(ctx context.Context) {
	for {
		raw, err := q.driver.Pop(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("queue: pop failed", "error", err)
			if !sleep(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}
		q.Process(ctx, raw)
	}
}

// Process decodes and runs one payload, retrying until maxRetry.
func (q *Queue) Process(ctx context.Context, raw []byte) {
	start := time.Now()
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	q.mu.RLock()
	factory, ok := q.registry[env.Type]
	q.mu.RUnlock()
	if !ok {
		q.fail(ctx, env, 0, start, fmt.Errorf("unregistered job type %q", env.Type))
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		q.fail(ctx, env, 0, start, fmt.Errorf("unmarshal payload: %w", err))
		return
	}

	var (
		lastErr  error
		attempts int
	)
	for attempt := 1; attempt <= q.maxRetry; attempt++ {
		attempts = attempt
		lastErr = q.run(ctx, job)
		if lastErr == nil {
			metrics.RecordQueueJob(env.Type, "success", start)
			logger.Debug("queue: job processed", "type", env.Type, "attempt", attempt)
			return
		}
		logger.Warn("queue: job failed", "type", env.Type, "attempt", attempt, "error", lastErr)
		if attempt < q.maxRetry && !sleep(ctx, q.backoff(attempt)) {
			break
		}
	}
	q.fail(ctx, env, attempts, start, lastErr)
}

func (q *Queue) run(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Handle(ctx)
}

func (q *Queue) fail(ctx context.Context, env envelope, attempts int, start time.Time, err error) {
	metrics.RecordQueueJob(env.Type, "failed", start)
	logger.Error("queue: job failed permanently", "type", env.Type, "attempts", attempts, "error", err)

	fj := FailedJob{
		Type:     env.Type,
		Payload:  string(env.Payload),
		Error:    err.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	// Recording must outlive a cancelled worker context.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := q.failed.Record(rctx, fj); rerr != nil {
		logger.Error("queue: record failed job", "type", env.Type, "error", rerr)
	}
}

// Retry pushes a failed job back onto the queue and forgets it.
func (q *Queue) Retry(ctx context.Context, id string) error {
	fj, err := q.failed.Get(ctx, id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Type: fj.Type, Payload: json.RawMessage(fj.Payload)})
	if err != nil {
		return fmt.Errorf("queue: retry: %w", err)
	}
	if err := q.driver.Push(ctx, raw); err != nil {
		return fmt.Errorf("queue: retry: %w", err)
	}
	return q.failed.Forget(ctx, id)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// ErrFailedJobNotFound is returned by FailedStore.Get for unknown ids.
var ErrFailedJobNotFound = errors.New("queue: failed job not found")
