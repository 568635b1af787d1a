package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mentorbase/mentor-marketplace/internal/config"
)

// NewClient returns nil when no Redis address is configured; callers treat
// a nil client as "caching and locking disabled".
func NewClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

// SweepLock is a best-effort mutex around sweep jobs so two overlapping
// cron invocations cannot double-process the same rows.
type SweepLock struct {
	rdb *redis.Client
}

func NewSweepLock(rdb *redis.Client) *SweepLock {
	return &SweepLock{rdb: rdb}
}

// Acquire returns ok=false when another invocation holds the lock. With no
// Redis configured the lock degrades to a no-op: each sweep query is
// idempotent on its own, the lock only removes duplicate side effects.
func (l *SweepLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, func(), error) {
	if l.rdb == nil {
		return true, func() {}, nil
	}

	key := "sweep_lock:" + name
	ok, err := l.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, nil
	}

	release := func() {
		l.rdb.Del(context.Background(), key)
	}
	return true, release, nil
}

// CalendarCache holds availability-calendar projections for a short TTL.
type CalendarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCalendarCache(rdb *redis.Client, ttl time.Duration) *CalendarCache {
	return &CalendarCache{rdb: rdb, ttl: ttl}
}

func (c *CalendarCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}

	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *CalendarCache) Set(ctx context.Context, key string, v any) error {
	if c.rdb == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}
