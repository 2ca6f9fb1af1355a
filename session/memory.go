package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map guarded by a RWMutex. Sessions are lost
// when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      o.now,
	}
}

// Create stores a new session under an id not present in the store.
func (m *MemoryStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrInvalidUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := newSessionID()
		if err != nil {
			return "", err
		}
		if _, taken := m.sessions[id]; taken {
			continue
		}
		m.sessions[id] = newSession(id, userID, m.now(), ttl)
		return id, nil
	}

	return "", ErrIDExhausted
}

// Lookup returns a copy of the live session. Expired sessions are evicted.
func (m *MemoryStore) Lookup(ctx context.Context, sessionID string) (Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}

	now := m.now()
	if !sess.Expired(now) {
		return sess, nil
	}

	m.mu.Lock()
	// Re-check under the write lock: the id may have been destroyed meanwhile.
	if current, ok := m.sessions[sessionID]; ok && current.Expired(now) {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	return Session{}, ErrNotFound
}

// Destroy removes the session and reports whether it existed.
func (m *MemoryStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return false, nil
	}
	delete(m.sessions, sessionID)
	return true, nil
}

// Len returns the number of stored records, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
