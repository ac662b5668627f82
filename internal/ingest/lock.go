package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker guards against two ingestion runs executing concurrently (the cron
// trigger and the HTTP trigger share one pipeline).
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

const (
	runLockKey = "jobs:ingest:lock"
	runLockTTL = 15 * time.Minute // safety net if a run dies without releasing
)

// RedisLock implements Locker with a SET NX key.
type RedisLock struct {
	rdb *redis.Client
}

// NewRedisLock returns a lock backed by the given client.
func NewRedisLock(rdb *redis.Client) *RedisLock {
	return &RedisLock{rdb: rdb}
}

// Acquire returns true when this caller now holds the lock.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, runLockKey, time.Now().Format(time.RFC3339), runLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock. Safe to call when the lock expired already.
func (l *RedisLock) Release(ctx context.Context) error {
	if err := l.rdb.Del(ctx, runLockKey).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
