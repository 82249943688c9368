// Package locking serializes the assignment read-modify-write so concurrent
// callers cannot select the same lowest-workload agent twice.
package locking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PoolLocker guards the agent pool during an assignment transaction.
// Acquire blocks until the lock is held or ctx is done; the returned release
// function must be called exactly once.
type PoolLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalLocker serializes within a single process.
type LocalLocker struct {
	sem chan struct{}
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

// Acquire takes the lock, honoring context cancellation while waiting.
func (l *LocalLocker) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// releaseScript deletes the lock key only when it still holds our token, so
// an expired lock taken over by another instance is never released by us.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// RedisLocker serializes across service instances via an advisory key.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker creates a distributed locker on the given key.
func NewRedisLocker(client *redis.Client, key string, ttl, retry time.Duration) *RedisLocker {
	return &RedisLocker{client: client, key: key, ttl: ttl, retry: retry}
}

// Acquire polls SET NX until the key is taken or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), l.ttl)
				defer cancel()
				_ = l.client.Eval(releaseCtx, releaseScript, []string{l.key}, token).Err()
			}
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
