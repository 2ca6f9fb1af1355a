package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Lookup for unknown and expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidUserID is returned by Create when the user id is empty.
	ErrInvalidUserID = errors.New("session user id required")
	// ErrIDExhausted is returned when no unused session id could be generated.
	ErrIDExhausted = errors.New("session id generation exhausted")
	// ErrBackendUnavailable wraps persistence backend failures.
	ErrBackendUnavailable = errors.New("session backend unavailable")
	// ErrRecordExpired is returned by a Backend asked to store a record
	// whose lifetime has already run out.
	ErrRecordExpired = errors.New("session record already expired")
)

// Store is the session lifecycle contract shared by every backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create stores a new session for userID and returns its id. A ttl <= 0
	// creates a session without expiry.
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// Lookup returns the live session for sessionID or ErrNotFound.
	Lookup(ctx context.Context, sessionID string) (Session, error)
	// Destroy removes the session and reports whether it existed.
	Destroy(ctx context.Context, sessionID string) (bool, error)
}

// Backend is the durable persistence collaborator used by PersistentStore.
// Get returns ErrNotFound when no record exists.
type Backend interface {
	Put(ctx context.Context, sess Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// Option configures MemoryStore and PersistentStore.
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PersistentStore is a Store that writes through to a Backend so sessions
// survive process restarts. It issues exactly one backend write per Create
// and per Destroy and never batches or reorders them.
type PersistentStore struct {
	backend Backend
	now     func() time.Time
}

// NewPersistentStore wraps backend.
func NewPersistentStore(backend Backend, opts ...Option) *PersistentStore {
	o := buildOptions(opts)
	return &PersistentStore{backend: backend, now: o.now}
}

// Create generates an unused id, then persists the session.
func (p *PersistentStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrInvalidUserID
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := newSessionID()
		if err != nil {
			return "", err
		}

		_, err = p.backend.Get(ctx, id)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, ErrNotFound):
			return "", backendError(err)
		}

		if err := p.backend.Put(ctx, newSession(id, userID, p.now(), ttl)); err != nil {
			return "", backendError(err)
		}
		return id, nil
	}

	return "", ErrIDExhausted
}

// Lookup reads through to the backend. An expired record is deleted and
// reported as ErrNotFound.
func (p *PersistentStore) Lookup(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, ErrNotFound
	}

	sess, err := p.backend.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, backendError(err)
	}

	if sess.Expired(p.now()) {
		if _, err := p.backend.Delete(ctx, sessionID); err != nil {
			return Session{}, backendError(err)
		}
		return Session{}, ErrNotFound
	}

	sess.SessionID = sessionID
	return sess, nil
}

// Destroy deletes the record from the backend.
func (p *PersistentStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	existed, err := p.backend.Delete(ctx, sessionID)
	if err != nil {
		return false, backendError(err)
	}
	return existed, nil
}

func backendError(err error) error {
	if errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
