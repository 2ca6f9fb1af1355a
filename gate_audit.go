package goGate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
)

// AuditErrorCode is the stable error label recorded on audit events.
type AuditErrorCode string

const (
	auditErrMissingCredentials    AuditErrorCode = "missing_credentials"
	auditErrAuthorizationRejected AuditErrorCode = "authorization_rejected"
	auditErrSessionRejected       AuditErrorCode = "session_rejected"
	auditErrUserNotFound          AuditErrorCode = "user_not_found"
	auditErrInvalidCredentials    AuditErrorCode = "invalid_credentials"
	auditErrSessionCreationFailed AuditErrorCode = "session_creation_failed"
	auditErrRateLimited           AuditErrorCode = "rate_limited"
	auditErrInternal              AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredentials):
		return auditErrMissingCredentials
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrSessionCreationFailed):
		return auditErrSessionCreationFailed
	default:
		return auditErrInternal
	}
}

func (g *Gate) emitAudit(ctx context.Context, event AuditEvent) {
	if g == nil || g.audit == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event.Time = g.now()
	event.Strategy = g.config.Strategy.String()
	if event.ClientIP == "" {
		event.ClientIP = clientIPFromContext(ctx)
	}
	g.audit.Emit(ctx, event)
}

func (g *Gate) emitRequestAudit(r *http.Request, kind AuditKind, reason string) {
	if g == nil || g.audit == nil {
		return
	}
	event := AuditEvent{
		Kind:   kind,
		Method: r.Method,
		Reason: reason,
	}
	if r.URL != nil {
		event.Path = r.URL.Path
	}
	if user, ok := UserFromContext(r.Context()); ok {
		event.UserID = user.ID
	}
	g.emitAudit(r.Context(), event)
}

// identifierHash keeps raw emails out of audit sinks while still letting
// repeated failures for one identifier be correlated.
func identifierHash(identifier string) string {
	if identifier == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:8])
}
