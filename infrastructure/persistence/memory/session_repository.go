// Package memory keeps editor state in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"grapheditor/domain/session"
	pkgerrors "grapheditor/pkg/errors"
)

// LockState reports whether an operation holds or awaits a session
type LockState interface {
	Held(id session.ID) bool
}

// SessionRepository stores live sessions in a map. Sessions idle for longer
// than the TTL are evicted by the janitor. Idle time is measured from the
// last Save and tracked here, never read from the session itself.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[session.ID]*session.Session
	lastSeen map[session.ID]time.Time
	locks    LockState
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewSessionRepository creates a repository; a zero ttl disables eviction.
// Sessions reported as held by locks are never evicted; locks may be nil.
func NewSessionRepository(ttl time.Duration, locks LockState, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[session.ID]*session.Session),
		lastSeen: make(map[session.ID]time.Time),
		locks:    locks,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Save persists a session (create or update)
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	if s == nil {
		return pkgerrors.NewValidationError("session cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	r.lastSeen[s.ID()] = r.now()
	return nil
}

// GetByID retrieves a session by its ID
func (r *SessionRepository) GetByID(ctx context.Context, id session.ID) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok || r.expired(id, r.now()) {
		return nil, pkgerrors.NewNotFoundError("session " + id.String())
	}
	return s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id session.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return pkgerrors.NewNotFoundError("session " + id.String())
	}
	delete(r.sessions, id)
	delete(r.lastSeen, id)
	return nil
}

// Count returns the number of live sessions
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

// EvictExpired drops sessions idle for longer than the TTL
func (r *SessionRepository) EvictExpired() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for id := range r.sessions {
		if !r.expired(id, now) || (r.locks != nil && r.locks.Held(id)) {
			continue
		}
		delete(r.sessions, id)
		delete(r.lastSeen, id)
		evicted++
	}
	return evicted
}

// expired must be called with r.mu held
func (r *SessionRepository) expired(id session.ID, now time.Time) bool {
	return r.ttl > 0 && now.Sub(r.lastSeen[id]) > r.ttl
}

// RunJanitor evicts expired sessions every interval until ctx is done
func (r *SessionRepository) RunJanitor(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictExpired(); n > 0 {
				r.logger.Info("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
