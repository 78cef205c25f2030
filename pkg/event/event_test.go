package event_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitthalk15/DataDash/pkg/event"
	"github.com/vitthalk15/DataDash/pkg/workerpool"
)

func TestFire_RunsListenersInOrder(t *testing.T) {
	d := event.New(nil)
	var got []string
	d.Listen("order.created", func(_ context.Context, p any) error {
		got = append(got, "a:"+p.(string))
		return nil
	})
	d.Listen("order.created", func(_ context.Context, p any) error {
		got = append(got, "b:"+p.(string))
		return errors.New("ignored")
	})
	d.Listen("order.deleted", func(context.Context, any) error {
		got = append(got, "wrong")
		return nil
	})

	d.Fire(context.Background(), "order.created", "o1")
	assert.Equal(t, []string{"a:o1", "b:o1"}, got)
}

func TestFireAsync_UsesPoolAndSurvivesCancel(t *testing.T) {
	pool := workerpool.New("events", 2)
	defer pool.Shutdown()
	d := event.New(pool)

	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	d.Listen("order.updated", func(ctx context.Context, _ any) error {
		defer wg.Done()
		ctxErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.FireAsync(ctx, "order.updated", nil)
	cancel()
	wg.Wait()
	assert.NoError(t, ctxErr)
}

func TestFlush(t *testing.T) {
	d := event.New(nil)
	called := false
	d.Listen("x", func(context.Context, any) error { called = true; return nil })
	d.Flush()
	d.Fire(context.Background(), "x", nil)
	assert.False(t, called)
}
