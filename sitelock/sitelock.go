// Package sitelock serializes recomputations of the same site.
package sitelock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLockLost is returned by an Unlock func when the lock expired or was
// taken over by another holder before it was released.
var ErrLockLost = errors.New("site lock lost")

// Unlock releases a previously acquired lock.
type Unlock func() error

// Locker is implemented by types that hand out exclusive per-site locks.
type Locker interface {
	// Lock blocks until the lock for siteID is acquired or ctx expires.
	// The returned context is derived from ctx and is cancelled once the
	// lock is released or lost. Work guarded by the lock must run under
	// it; context.Cause reports ErrLockLost when the lock was lost.
	Lock(ctx context.Context, siteID int64) (context.Context, Unlock, error)
}

// Nop is a Locker that never blocks. It's meant for callers that already
// serialize work per site.
type Nop struct{}

// Lock implements Locker.
func (Nop) Lock(ctx context.Context, _ int64) (context.Context, Unlock, error) {
	return ctx, func() error { return nil }, nil
}

// Static and compile-time checks to ensure the lockers implement the
// Locker interface.
var (
	_ Locker = Nop{}
	_ Locker = (*Local)(nil)
)

// Local is an in-process Locker.
type Local struct {
	mu    sync.Mutex
	sites map[int64]chan struct{}
}

// NewLocal returns a Local locker.
func NewLocal() *Local {
	return &Local{sites: make(map[int64]chan struct{})}
}

// Lock implements Locker.
func (l *Local) Lock(ctx context.Context, siteID int64) (context.Context, Unlock, error) {
	l.mu.Lock()
	slot, exists := l.sites[siteID]
	if !exists {
		slot = make(chan struct{}, 1)
		l.sites[siteID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("lock site %d: %w", siteID, ctx.Err())
	}

	lockCtx, cancel := context.WithCancelCause(ctx)

	var once sync.Once

	return lockCtx, func() error {
		once.Do(func() {
			cancel(nil)
			<-slot
		})

		return nil
	}, nil
}
