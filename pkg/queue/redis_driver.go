package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDriver keeps ready jobs in a list (LPUSH/BRPOP) and delayed jobs in
// a sorted set scored by their due time.
type RedisDriver struct {
	rdb        *redis.Client
	readyKey   string
	delayedKey string
	wait       time.Duration
}

// NewRedisDriver stores jobs under prefix, e.g. "datavista:queue".
func NewRedisDriver(rdb *redis.Client, prefix string) *RedisDriver {
	if prefix == "" {
		prefix = "datavista:queue"
	}
	return &RedisDriver{
		rdb:        rdb,
		readyKey:   prefix + ":jobs",
		delayedKey: prefix + ":delayed",
		wait:       5 * time.Second,
	}
}

func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, d.readyKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

func (d *RedisDriver) PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error {
	due := float64(time.Now().Add(delay).Unix())
	if err := d.rdb.ZAdd(ctx, d.delayedKey, redis.Z{Score: due, Member: string(payload)}).Err(); err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

// Pop promotes due delayed jobs, then waits up to five seconds for one.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	if err := d.promote(ctx); err != nil && ctx.Err() == nil {
		return nil, err
	}
	res, err := d.rdb.BRPop(ctx, d.wait, d.readyKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

func (d *RedisDriver) promote(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := d.rdb.ZRangeByScore(ctx, d.delayedKey, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return fmt.Errorf("queue/redis: scan delayed: %w", err)
	}
	for _, job := range due {
		// ZRem decides which worker owns the job.
		n, err := d.rdb.ZRem(ctx, d.delayedKey, job).Result()
		if err != nil {
			return fmt.Errorf("queue/redis: claim delayed: %w", err)
		}
		if n == 1 {
			if err := d.rdb.LPush(ctx, d.readyKey, job).Err(); err != nil {
				return fmt.Errorf("queue/redis: promote: %w", err)
			}
		}
	}
	return nil
}
