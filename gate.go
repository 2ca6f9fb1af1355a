package goGate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/session"
)

// Gate is the per-request entry point. It is immutable after Build and safe
// for concurrent use.
type Gate struct {
	config   Config
	strategy Strategy
	users    UserRepository
	logger   *slog.Logger
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	limiter  *rate.Limiter
	now      func() time.Time
}

// Strategy returns the active strategy, or nil when the gate is disabled.
func (g *Gate) Strategy() Strategy {
	if g == nil {
		return nil
	}
	return g.strategy
}

// Config returns a copy of the configuration the gate was built with.
func (g *Gate) Config() Config {
	if g == nil {
		return Config{}
	}
	return cloneConfig(g.config)
}

// Close flushes and stops the audit dispatcher.
func (g *Gate) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped under backpressure.
func (g *Gate) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// AuditDroppedKind returns how many audit events of kind were dropped.
func (g *Gate) AuditDroppedKind(kind AuditKind) uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.DroppedKind(kind)
}

// MetricsSnapshot returns the current counters.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

// Evaluate decides the fate of r:
//
//  1. disabled gate: Anonymous;
//  2. the strategy resolves the current user;
//  3. exempt path: Authenticated when a user resolved, else Anonymous;
//  4. neither Authorization header nor session cookie: Unauthenticated (401);
//  5. credentials offered but no user: Forbidden (403);
//  6. otherwise Authenticated.
//
// A nil gate fails closed with Unauthenticated.
func (g *Gate) Evaluate(r *http.Request) Decision {
	if g == nil || r == nil {
		return Decision{Status: DecisionUnauthenticated}
	}
	if g.strategy == nil {
		g.metrics.Inc(MetricRequestAnonymous)
		return Decision{Status: DecisionAnonymous}
	}

	start := time.Now()
	defer func() { g.metrics.Observe(MetricEvaluateLatency, time.Since(start)) }()

	user, resolved := g.strategy.CurrentUser(r)

	path := ""
	if r.URL != nil {
		path = r.URL.Path
	}

	if !g.strategy.RequiresAuth(path) {
		g.metrics.Inc(MetricRequestExempt)
		if resolved {
			return Decision{Status: DecisionAuthenticated, User: user, Exempt: true}
		}
		return Decision{Status: DecisionAnonymous, Exempt: true}
	}

	_, hasHeader := g.strategy.AuthorizationHeader(r)
	_, hasCookie := g.strategy.SessionCookie(r)
	if !hasHeader && !hasCookie {
		g.metrics.Inc(MetricRequestUnauthenticated)
		g.emitRequestAudit(r, AuditRequestUnauthenticated, string(auditErrMissingCredentials))
		return Decision{Status: DecisionUnauthenticated}
	}

	if !resolved {
		g.metrics.Inc(MetricRequestForbidden)
		reason := auditErrSessionRejected
		if hasHeader {
			reason = auditErrAuthorizationRejected
		}
		g.emitRequestAudit(r, AuditRequestForbidden, string(reason))
		return Decision{Status: DecisionForbidden}
	}

	g.metrics.Inc(MetricRequestAuthenticated)
	return Decision{Status: DecisionAuthenticated, User: user}
}

// CurrentUser resolves the caller without applying exemptions.
func (g *Gate) CurrentUser(r *http.Request) (User, bool) {
	if g == nil || g.strategy == nil || r == nil {
		return User{}, false
	}
	return g.strategy.CurrentUser(r)
}

// Login verifies email and password, creates a session and sets the session
// cookie on w. It requires a session strategy.
//
// Errors: ErrMissingCredentials, ErrUserNotFound, ErrInvalidCredentials,
// ErrLoginRateLimited, ErrSessionsUnsupported, ErrSessionCreationFailed.
func (g *Gate) Login(ctx context.Context, w http.ResponseWriter, email, password string) (User, error) {
	if g == nil {
		return User{}, ErrGateNotReady
	}
	strategy, ok := g.strategy.(SessionStrategy)
	if !ok {
		return User{}, ErrSessionsUnsupported
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ip := clientIPFromContext(ctx)
	if email != "" {
		if err := g.throttleCheck(ctx, email, ip); err != nil {
			g.metrics.Inc(MetricLoginFailure)
			return User{}, err
		}
	}

	user, err := verifyCredentials(ctx, g.users, email, password)
	if err != nil {
		g.metrics.Inc(MetricLoginFailure)
		switch {
		case isCollaboratorError(err):
			g.metrics.Inc(MetricCollaboratorFailure)
			g.logger.WarnContext(ctx, "login lookup failed", "email", email, "error", err)
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidCredentials):
			g.throttleFail(ctx, email, ip)
		}
		g.emitAudit(ctx, AuditEvent{
			Kind:       AuditLoginFailed,
			Identifier: identifierHash(email),
			Reason:     string(auditErrorCode(err)),
		})
		return User{}, err
	}

	value, expiresAt, err := strategy.CreateSession(ctx, user.ID)
	if err != nil {
		g.metrics.Inc(MetricLoginFailure)
		g.logger.ErrorContext(ctx, "session creation failed", "user_id", user.ID, "error", err)
		g.emitAudit(ctx, AuditEvent{
			Kind:       AuditLoginFailed,
			UserID:     user.ID,
			Identifier: identifierHash(email),
			Reason:     string(auditErrSessionCreationFailed),
		})
		return User{}, fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
	}

	if w != nil {
		session.SetCookie(w, value, expiresAt, g.config.Session.cookieOptions())
	}
	g.throttleReset(ctx, email)

	g.metrics.Inc(MetricLoginSuccess)
	g.logger.InfoContext(ctx, "login", "user_id", user.ID, "email", user.Email)
	g.emitAudit(ctx, AuditEvent{
		Kind:       AuditLoginSucceeded,
		UserID:     user.ID,
		Identifier: identifierHash(email),
	})
	return user, nil
}

// Logout destroys the session referenced by r and clears the cookie on w.
// It returns ErrSessionNotFound when no live session was destroyed.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) error {
	if g == nil || r == nil {
		return ErrGateNotReady
	}
	strategy, ok := g.strategy.(SessionStrategy)
	if !ok {
		return ErrSessionsUnsupported
	}

	// The cookie is cleared even when no live session backs it.
	if w != nil {
		session.ClearCookie(w, g.config.Session.cookieOptions())
	}

	if !strategy.DestroySession(r) {
		return ErrSessionNotFound
	}

	g.metrics.Inc(MetricLogout)
	g.emitRequestAudit(r, AuditLogout, "")
	return nil
}

// IsSessionStrategy reports whether Login and Logout are available.
func (g *Gate) IsSessionStrategy() bool {
	if g == nil {
		return false
	}
	_, ok := g.strategy.(SessionStrategy)
	return ok
}
