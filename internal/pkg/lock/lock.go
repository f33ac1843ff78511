// Package lock provides short-lived mutual exclusion for batch operations that
// must not run twice at the same time, such as processing a payroll run.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrLockHeld = errors.New("operation already in progress")

// Locker acquires a named lock for at most ttl. The returned release func is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiry, ok := l.held[key]; ok && now.Before(expiry) {
		return nil, ErrLockHeld
	}
	expiry := now.Add(ttl)
	l.held[key] = expiry

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// a later holder may own the key after our ttl lapsed
			if l.held[key].Equal(expiry) {
				delete(l.held, key)
			}
		})
	}, nil
}
