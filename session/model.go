package session

import "time"

// Session binds an opaque session id to a user id.
//
// ExpiresAt is zero for sessions that never expire. When set it equals
// CreatedAt plus the ttl given at creation and is never changed afterwards.
type Session struct {
	SessionID string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the session carries an expiration time.
func (s Session) HasExpiry() bool {
	return !s.ExpiresAt.IsZero()
}

// Expired reports whether now is strictly after the expiration time.
func (s Session) Expired(now time.Time) bool {
	return s.HasExpiry() && now.After(s.ExpiresAt)
}

func newSession(sessionID, userID string, now time.Time, ttl time.Duration) Session {
	sess := Session{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: now,
	}
	if ttl > 0 {
		sess.ExpiresAt = now.Add(ttl)
	}
	return sess
}
