package planning

import (
	"context"
	"sync"
)

// planLocks serializes read-modify-write sequences per plan id.
// Each lock is a one-slot channel so acquisition can honour ctx.
type planLocks struct {
	mu    sync.Mutex
	locks map[string]*planLock
}

type planLock struct {
	sem  chan struct{}
	refs int
}

func newPlanLocks() *planLocks {
	return &planLocks{locks: make(map[string]*planLock)}
}

// acquire blocks until the lock for id is held or ctx is done.
// The returned release must be called exactly once.
func (l *planLocks) acquire(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	pl, ok := l.locks[id]
	if !ok {
		pl = &planLock{sem: make(chan struct{}, 1)}
		l.locks[id] = pl
	}
	pl.refs++
	l.mu.Unlock()

	select {
	case pl.sem <- struct{}{}:
		return func() {
			<-pl.sem
			l.unref(id, pl)
		}, nil
	case <-ctx.Done():
		l.unref(id, pl)
		return nil, ctx.Err()
	}
}

func (l *planLocks) unref(id string, pl *planLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pl.refs--
	if pl.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *planLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
