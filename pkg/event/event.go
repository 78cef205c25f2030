// Package event is an in-process publish/subscribe dispatcher. Listeners
// register by event name; Fire runs them inline and FireAsync hands them
// to a worker pool.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/workerpool"
)

// Handler receives the event payload. A returned error is logged, never
// propagated to the publisher.
type Handler func(ctx context.Context, payload any) error

// Dispatcher holds the listener table.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// New returns a Dispatcher. When pool is nil FireAsync falls back to Fire.
func New(pool *workerpool.Pool) *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}, pool: pool}
}

func (d *Dispatcher) Listen(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

func (d *Dispatcher) listeners(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Handler(nil), d.handlers[name]...)
}

// Fire runs every listener for name in registration order.
func (d *Dispatcher) Fire(ctx context.Context, name string, payload any) {
	for _, h := range d.listeners(name) {
		d.call(ctx, name, h, payload)
	}
}

// FireAsync submits each listener to the pool and returns. The listener
// context is detached from ctx's cancellation so request teardown does not
// abort it. A full pool runs the listener inline.
func (d *Dispatcher) FireAsync(ctx context.Context, name string, payload any) {
	if d.pool == nil {
		d.Fire(ctx, name, payload)
		return
	}
	bg := context.WithoutCancel(ctx)
	for _, h := range d.listeners(name) {
		h := h
		err := d.pool.Submit(func() { d.call(bg, name, h, payload) })
		if errors.Is(err, workerpool.ErrPoolFull) || errors.Is(err, workerpool.ErrPoolClosed) {
			d.call(bg, name, h, payload)
		}
	}
}

func (d *Dispatcher) call(ctx context.Context, name string, h Handler, payload any) {
	if err := h(ctx, payload); err != nil {
		logger.WithCtx(ctx).Warn("event: listener failed", "event", name, "error", err)
	}
}

// Flush removes every listener.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}
