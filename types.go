package goGate

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	internalmetrics "github.com/MrEthical07/goGate/internal/metrics"
)

// User is the identity resolved for a request. The gate never stores users;
// it holds what the UserRepository returns for the duration of a request.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns "First Last", falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// UserRepository is the user store consumed by strategies. Lookups return
// ErrUserNotFound for misses; any other error is treated as a collaborator
// failure and resolves to "no user" at the gate.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	VerifyPassword(ctx context.Context, user User, password string) (bool, error)
}

// DecisionStatus is the gate verdict for one request.
type DecisionStatus uint8

const (
	// DecisionAuthenticated lets the request through with a resolved user.
	DecisionAuthenticated DecisionStatus = iota
	// DecisionAnonymous lets the request through without a user: the gate is
	// disabled, or the path is exempt and nothing resolved.
	DecisionAnonymous
	// DecisionUnauthenticated means no credentials were offered (HTTP 401).
	DecisionUnauthenticated
	// DecisionForbidden means credentials were offered but did not resolve (HTTP 403).
	DecisionForbidden
)

func (s DecisionStatus) String() string {
	switch s {
	case DecisionAuthenticated:
		return "authenticated"
	case DecisionAnonymous:
		return "anonymous"
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is produced once per request by Gate.Evaluate.
type Decision struct {
	Status DecisionStatus
	// User is set when a user resolved, including on exempt paths.
	User User
	// Exempt reports that the path bypassed authentication.
	Exempt bool
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Status == DecisionAuthenticated || d.Status == DecisionAnonymous
}

// HTTPStatus maps the decision to the response status of a rejected request.
// Allowed decisions map to 200.
func (d Decision) HTTPStatus() int {
	switch d.Status {
	case DecisionUnauthenticated:
		return http.StatusUnauthorized
	case DecisionForbidden:
		return http.StatusForbidden
	default:
		return http.StatusOK
	}
}

// AuditEvent is one record delivered to an AuditSink.
type AuditEvent = internalaudit.Event

// AuditKind names the gate event an AuditEvent records.
type AuditKind = internalaudit.Kind

// Audit event kinds.
const (
	AuditLoginSucceeded         = internalaudit.KindLoginSucceeded
	AuditLoginFailed            = internalaudit.KindLoginFailed
	AuditLoginRateLimited       = internalaudit.KindLoginRateLimited
	AuditLogout                 = internalaudit.KindLogout
	AuditRequestUnauthenticated = internalaudit.KindRequestUnauthenticated
	AuditRequestForbidden       = internalaudit.KindRequestForbidden
)

// AuditSink receives audit events from the gate's dispatcher.
type AuditSink = internalaudit.Sink

// AuditSinkFunc adapts a function to AuditSink.
type AuditSinkFunc = internalaudit.SinkFunc

// NoOpSink discards events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink delivers events into a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per event line.
type JSONWriterSink = internalaudit.JSONWriterSink

// LogSink writes events to a slog.Logger.
type LogSink = internalaudit.LogSink

// NewChannelSink creates a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a JSONWriterSink on w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewLogSink creates a LogSink on logger. Pass the gate's redacting logger
// to keep PII out of audit records.
func NewLogSink(logger *slog.Logger) *LogSink {
	return internalaudit.NewLogSink(logger)
}

// MetricID identifies a gate counter.
type MetricID = internalmetrics.MetricID

const (
	MetricRequestAuthenticated   = internalmetrics.MetricRequestAuthenticated
	MetricRequestAnonymous       = internalmetrics.MetricRequestAnonymous
	MetricRequestExempt          = internalmetrics.MetricRequestExempt
	MetricRequestUnauthenticated = internalmetrics.MetricRequestUnauthenticated
	MetricRequestForbidden       = internalmetrics.MetricRequestForbidden
	MetricLoginSuccess           = internalmetrics.MetricLoginSuccess
	MetricLoginFailure           = internalmetrics.MetricLoginFailure
	MetricLoginRateLimited       = internalmetrics.MetricLoginRateLimited
	MetricSessionCreated         = internalmetrics.MetricSessionCreated
	MetricSessionDestroyed       = internalmetrics.MetricSessionDestroyed
	MetricLogout                 = internalmetrics.MetricLogout
	MetricCollaboratorFailure    = internalmetrics.MetricCollaboratorFailure
	MetricEvaluateLatency        = internalmetrics.MetricEvaluateLatency
)

// Metrics holds the gate counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}
