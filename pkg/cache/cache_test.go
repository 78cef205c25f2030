package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/pkg/cache"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, m.Set(ctx, "short", []byte("x"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestRememberComputesOnce(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()
	calls := 0
	compute := func() (any, error) {
		calls++
		return map[string]int{"orders": 3}, nil
	}

	for i := 0; i < 3; i++ {
		var out map[string]int
		require.NoError(t, cache.Remember(ctx, m, "dash", time.Minute, &out, compute))
		assert.Equal(t, 3, out["orders"])
	}
	assert.Equal(t, 1, calls)
}

func TestRememberPropagatesComputeError(t *testing.T) {
	m := cache.NewMemory()
	boom := errors.New("boom")
	var out int
	err := cache.Remember(context.Background(), m, "k", time.Minute, &out, func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, err = m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
