// Package workerpool is a bounded goroutine pool with backpressure. Event
// listeners and queue workers run on it so bursts never spawn unbounded
// goroutines.
//
//	pool := workerpool.New("events", 8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    // shed or run inline
//	}
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vitthalk15/DataDash/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool runs submitted tasks on a fixed number of workers. The task buffer
// holds twice the worker count.
type Pool struct {
	name    string
	tasks   chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	running atomic.Int64
	panics  atomic.Int64
}

// New starts size workers (at least one).
func New(name string, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{name: name, tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued, ctx is done or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running is the number of tasks currently executing.
func (p *Pool) Running() int64 { return p.running.Load() }

// Panics is the number of tasks that panicked since New.
func (p *Pool) Panics() int64 { return p.panics.Load() }

// Shutdown stops intake and waits for queued and in-flight tasks.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	p.running.Add(1)
	defer p.running.Add(-1)
	defer func() {
		if rec := recover(); rec != nil {
			p.panics.Add(1)
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", rec)
		}
	}()
	task()
}
