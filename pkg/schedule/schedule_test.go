package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsRepeatedly(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int32
	require.NoError(t, s.Every(10*time.Millisecond).Name("count").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Start(ctx); close(done) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestWithoutOverlapping(t *testing.T) {
	s := New()
	s.tick = 2 * time.Millisecond

	var runs atomic.Int32
	release := make(chan struct{})
	require.NoError(t, s.Every(time.Millisecond).WithoutOverlapping().Run(func(context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Start(ctx); close(done) }()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	close(release)
	cancel()
	<-done
}

func TestRunRejectsBadEntries(t *testing.T) {
	s := New()
	assert.Error(t, s.Cron("* *").Run(func(context.Context) error { return nil }))
	assert.Error(t, s.Every(0).Run(func(context.Context) error { return nil }))
	require.NoError(t, s.Cron("0 8 * * *").Name("digest").Run(func(context.Context) error { return nil }))
	assert.Equal(t, []string{"digest  [0 8 * * *]"}, s.List())
}

func TestMatchCron(t *testing.T) {
	at := time.Date(2026, time.March, 2, 8, 30, 0, 0, time.UTC) // Monday

	cases := map[string]bool{
		"* * * * *":     true,
		"30 8 * * *":    true,
		"0 8 * * *":     false,
		"*/15 * * * *":  true,
		"*/7 * * * *":   false,
		"* 6-9 * * 1-5": true,
		"* * * * 0":     false,
		"x * * * *":     false,
		"0,30 8 * * *":  true,
		"0,45 8 * * *":  false,
	}
	for expr, want := range cases {
		assert.Equal(t, want, matchCron(expr, at), expr)
	}
}

func TestCronFiresOncePerMinute(t *testing.T) {
	e := &entry{cron: "* * * * *"}
	now := time.Date(2026, time.March, 2, 8, 30, 5, 0, time.UTC)
	assert.True(t, e.due(now))
	e.lastRun = now
	assert.False(t, e.due(now.Add(20*time.Second)))
	assert.True(t, e.due(now.Add(time.Minute)))
}
