package goGate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/goGate/exclusion"
	"github.com/MrEthical07/goGate/session"
)

// Strategy authenticates a single request. Implementations are stateless
// across requests except through their session store, and safe for concurrent
// use.
type Strategy interface {
	Kind() StrategyKind
	// RequiresAuth reports whether path is protected.
	RequiresAuth(path string) bool
	// AuthorizationHeader returns the raw Authorization header, if present.
	AuthorizationHeader(r *http.Request) (string, bool)
	// SessionCookie returns the raw session cookie value, if present.
	SessionCookie(r *http.Request) (string, bool)
	// CurrentUser resolves the caller. Every failure, including collaborator
	// errors, reports false.
	CurrentUser(r *http.Request) (User, bool)
}

// SessionStrategy is a Strategy that issues and revokes sessions.
type SessionStrategy interface {
	Strategy
	// CreateSession stores a session for userID and returns the cookie value
	// and its expiry (zero when the session never expires).
	CreateSession(ctx context.Context, userID string) (string, time.Time, error)
	// DestroySession revokes the session referenced by the request cookie and
	// reports whether a live session was removed.
	DestroySession(r *http.Request) bool
}

const authorizationHeader = "Authorization"

// baseStrategy carries the request accessors shared by every variant.
type baseStrategy struct {
	kind       StrategyKind
	matcher    *exclusion.Matcher
	cookieName string
	logger     *slog.Logger
	metrics    *Metrics
}

func (b *baseStrategy) Kind() StrategyKind {
	return b.kind
}

func (b *baseStrategy) RequiresAuth(path string) bool {
	return b.matcher.RequiresAuth(path)
}

func (b *baseStrategy) AuthorizationHeader(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	v := r.Header.Get(authorizationHeader)
	return v, v != ""
}

func (b *baseStrategy) SessionCookie(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	return session.ReadCookie(r, b.cookieName)
}

// collaboratorFailure logs and counts an error from the user repository or
// session store. The request still resolves to "no user".
func (b *baseStrategy) collaboratorFailure(ctx context.Context, op string, err error) {
	b.metrics.Inc(MetricCollaboratorFailure)
	b.logger.WarnContext(ctx, "collaborator failure", "strategy", b.kind.String(), "op", op, "error", err)
}

// NullAuth protects every non-exempt route and never resolves a user, so
// protected requests fail closed.
type NullAuth struct {
	baseStrategy
}

// CurrentUser always reports false.
func (*NullAuth) CurrentUser(*http.Request) (User, bool) {
	return User{}, false
}
