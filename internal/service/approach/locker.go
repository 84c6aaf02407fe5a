package approach

import (
	"context"
	"sync"
)

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*busLock
}

type busLock struct {
	ch      chan struct{}
	waiters int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*busLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, busID string) (func(), error) {
	l.mu.Lock()
	bl, ok := l.locks[busID]
	if !ok {
		bl = &busLock{ch: make(chan struct{}, 1)}
		l.locks[busID] = bl
	}
	bl.waiters++
	l.mu.Unlock()

	select {
	case bl.ch <- struct{}{}:
	case <-ctx.Done():
		l.leave(busID, bl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-bl.ch
			l.leave(busID, bl)
		})
	}, nil
}

func (l *LocalLocker) leave(busID string, bl *busLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bl.waiters--
	if bl.waiters == 0 {
		delete(l.locks, busID)
	}
}

var _ Locker = (*LocalLocker)(nil)
