package goGate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goGate/session"
)

// SessionAuth resolves users from a session cookie. The session, session
// expiring and session persisted strategies are all SessionAuth; they differ
// only in the store and the ttl they are built with.
type SessionAuth struct {
	baseStrategy
	users UserRepository
	store session.Store
	codec session.CookieCodec
	ttl   time.Duration
}

// TTL returns the lifetime given to new sessions; zero means no expiry.
func (s *SessionAuth) TTL() time.Duration {
	return s.ttl
}

// CurrentUser resolves cookie -> session -> user.
func (s *SessionAuth) CurrentUser(r *http.Request) (User, bool) {
	sessionID, ok := s.sessionID(r)
	if !ok {
		return User{}, false
	}

	userID, ok := s.UserIDForSession(r.Context(), sessionID)
	if !ok {
		return User{}, false
	}

	user, err := s.users.FindByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.collaboratorFailure(r.Context(), "find_user_by_id", err)
		}
		return User{}, false
	}
	return user, true
}

// UserIDForSession returns the user bound to a live session.
func (s *SessionAuth) UserIDForSession(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}

	sess, err := s.store.Lookup(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.collaboratorFailure(ctx, "session_lookup", err)
		}
		return "", false
	}
	return sess.UserID, true
}

// CreateSession stores a session and encodes it as a cookie value.
func (s *SessionAuth) CreateSession(ctx context.Context, userID string) (string, time.Time, error) {
	sessionID, err := s.store.Create(ctx, userID, s.ttl)
	if err != nil {
		return "", time.Time{}, err
	}

	// Read the record back so the cookie carries the stored expiry and a
	// write the store could not make visible is caught here.
	sess, err := s.store.Lookup(ctx, sessionID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session %s not readable after create: %w", sessionID, err)
	}
	expiresAt := sess.ExpiresAt

	value, err := s.codec.Encode(sessionID, expiresAt)
	if err != nil {
		if _, derr := s.store.Destroy(ctx, sessionID); derr != nil {
			s.collaboratorFailure(ctx, "session_destroy", derr)
		}
		return "", time.Time{}, err
	}

	s.metrics.Inc(MetricSessionCreated)
	return value, expiresAt, nil
}

// DestroySession removes the live session named by the request cookie.
// Unknown and expired sessions report false.
func (s *SessionAuth) DestroySession(r *http.Request) bool {
	sessionID, ok := s.sessionID(r)
	if !ok {
		return false
	}
	if _, ok := s.UserIDForSession(r.Context(), sessionID); !ok {
		return false
	}

	existed, err := s.store.Destroy(r.Context(), sessionID)
	if err != nil {
		s.collaboratorFailure(r.Context(), "session_destroy", err)
		return false
	}
	if existed {
		s.metrics.Inc(MetricSessionDestroyed)
	}
	return existed
}

func (s *SessionAuth) sessionID(r *http.Request) (string, bool) {
	value, ok := s.SessionCookie(r)
	if !ok {
		return "", false
	}
	return s.codec.Decode(value)
}
