package queue

import "context"

// MemoryDriver is a buffered channel. Jobs do not survive a restart.
type MemoryDriver struct {
	ch chan []byte
}

func NewMemoryDriver(buffer int) *MemoryDriver {
	if buffer <= 0 {
		buffer = 1000
	}
	return &MemoryDriver{ch: make(chan []byte, buffer)}
}

// Push blocks while the buffer is full.
func (d *MemoryDriver) Push(ctx context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}

// Len is the number of buffered jobs.
func (d *MemoryDriver) Len() int { return len(d.ch) }
