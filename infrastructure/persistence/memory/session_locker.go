package memory

import (
	"context"
	"sync"

	"grapheditor/domain/session"
)

// SessionLocker hands out one lock per session id. Entries are dropped once
// nobody holds or waits for them.
type SessionLocker struct {
	mu    sync.Mutex
	locks map[session.ID]*sessionLock
}

type sessionLock struct {
	sem     chan struct{}
	waiters int
}

// NewSessionLocker creates a keyed locker
func NewSessionLocker() *SessionLocker {
	return &SessionLocker{locks: make(map[session.ID]*sessionLock)}
}

// Lock blocks until the session lock is held or ctx is done
func (l *SessionLocker) Lock(ctx context.Context, id session.ID) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{sem: make(chan struct{}, 1)}
		l.locks[id] = entry
	}
	entry.waiters++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(id, entry, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(id, entry, true) })
	}, nil
}

func (l *SessionLocker) release(id session.ID, entry *sessionLock, held bool) {
	if held {
		<-entry.sem
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry.waiters--
	if entry.waiters == 0 {
		delete(l.locks, id)
	}
}

// Held reports whether the session lock is held or awaited
func (l *SessionLocker) Held(id session.ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.locks[id]
	return ok
}

// Len returns the number of sessions with a held or awaited lock
func (l *SessionLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
