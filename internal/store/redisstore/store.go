package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store wraps the Redis client and implements lock.Locker with a
// SET NX PX mutex so session turns and wall submits stay serialized
// across server instances.
type Store struct {
	client *redis.Client

	ttl         time.Duration
	retryEvery  time.Duration
	acquireWait time.Duration
}

func New(addr, password string, db int) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl:         90 * time.Second,
		retryEvery:  50 * time.Millisecond,
		acquireWait: 30 * time.Second,
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// releaseScript deletes the lock only if it still holds our token, so an
// expired-and-reacquired lock is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// WithLock acquires key, runs fn, and releases the key. Acquisition polls
// with backoff up to a bounded wait; the TTL bounds how long a crashed
// holder can wedge the key.
func (s *Store) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	deadline := time.Now().Add(s.acquireWait)
	for {
		ok, err := s.client.SetNX(ctx, key, token, s.ttl).Result()
		if err != nil {
			return fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("redis lock %s: acquire timed out", key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryEvery):
		}
	}

	defer func() {
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		// Best effort; an unreleased lock expires via TTL.
		_ = releaseScript.Run(relCtx, s.client, []string{key}, token).Err()
	}()

	return fn(ctx)
}
