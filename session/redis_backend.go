package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend persists sessions as binary blobs under "<prefix>:<sessionID>".
// Records with an expiry carry a matching key TTL, so Redis drops them on
// its own; PersistentStore still checks ExpiresAt on every read.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisBackend creates a backend on client. An empty prefix defaults to "gs".
func NewRedisBackend(client redis.UniversalClient, prefix string, opts ...Option) *RedisBackend {
	if prefix == "" {
		prefix = "gs"
	}
	o := buildOptions(opts)
	return &RedisBackend{
		redis:  client,
		prefix: prefix,
		now:    o.now,
	}
}

func (r *RedisBackend) key(sessionID string) string {
	return r.prefix + ":" + sessionID
}

// Put stores sess. The key TTL is the record's lifetime (ExpiresAt minus
// CreatedAt), so it does not depend on the Redis host clock agreeing with the
// clock that stamped the record. A record without CreatedAt falls back to the
// backend clock. A record with no remaining lifetime is rejected with
// ErrRecordExpired.
//
//	Performance: 1 Redis SET.
func (r *RedisBackend) Put(ctx context.Context, sess Session) error {
	if sess.SessionID == "" {
		return errors.New("session: missing session_id")
	}

	data, err := Encode(sess)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if sess.HasExpiry() {
		if sess.CreatedAt.IsZero() {
			ttl = sess.ExpiresAt.Sub(r.now())
		} else {
			ttl = sess.ExpiresAt.Sub(sess.CreatedAt)
		}
		if ttl <= 0 {
			return ErrRecordExpired
		}
	}

	if err := r.redis.Set(ctx, r.key(sess.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Get loads the record for sessionID.
//
//	Performance: 1 Redis GET.
func (r *RedisBackend) Get(ctx context.Context, sessionID string) (Session, error) {
	data, err := r.redis.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return Session{}, err
	}
	sess.SessionID = sessionID
	return sess, nil
}

// Delete removes the record and reports whether a key was deleted.
//
//	Performance: 1 Redis DEL.
func (r *RedisBackend) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.redis.Del(ctx, r.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return n > 0, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (r *RedisBackend) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return time.Since(start), nil
}
