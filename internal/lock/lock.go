package lock

import (
	"context"
	"sync"
)

// Locker serializes work under a named key. WithLock blocks until the key
// is held, runs fn, and releases the key even if fn returns an error.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// MemoryLocker is a process-local Locker backed by per-key mutexes.
// Single-instance deployments and tests use it directly; multi-instance
// deployments use the Redis implementation in store/redisstore.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryLocker) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

func (l *MemoryLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := l.lockFor(key)
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}
