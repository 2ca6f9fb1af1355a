package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Kind names what the gate observed.
type Kind string

const (
	KindLoginSucceeded         Kind = "login_success"
	KindLoginFailed            Kind = "login_failure"
	KindLoginRateLimited       Kind = "login_rate_limited"
	KindLogout                 Kind = "logout"
	KindRequestUnauthenticated Kind = "request_unauthenticated"
	KindRequestForbidden       Kind = "request_forbidden"
)

// Denied reports whether the event records a refused login or request.
func (k Kind) Denied() bool {
	switch k {
	case KindLoginFailed, KindLoginRateLimited, KindRequestUnauthenticated, KindRequestForbidden:
		return true
	}
	return false
}

// Status is the HTTP status the gate answers with for request events, or
// zero when the event does not map to one.
func (k Kind) Status() int {
	switch k {
	case KindRequestUnauthenticated:
		return 401
	case KindRequestForbidden:
		return 403
	case KindLoginRateLimited:
		return 429
	}
	return 0
}

// Event is one gate decision or session lifecycle change.
//
// Identifier is a truncated hash of the login identifier; raw emails never
// reach a sink.
type Event struct {
	Time       time.Time `json:"time"`
	Kind       Kind      `json:"kind"`
	Strategy   string    `json:"strategy"`
	UserID     string    `json:"user_id,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Sink receives events from a Dispatcher.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event)

func (f SinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink hands events to a buffered channel. Emit waits for room.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan Event, max(buffer, 1))}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event { return s.events }

// JSONWriterSink writes one JSON document per line.
type JSONWriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		w = io.Discard
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	_ = s.enc.Encode(event)
	s.mu.Unlock()
}

// LogSink records events on a slog.Logger: denied events at Warn, the rest
// at Info.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, event Event) {
	level := slog.LevelInfo
	if event.Kind.Denied() {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("kind", string(event.Kind)),
		slog.String("strategy", event.Strategy),
	}
	if status := event.Kind.Status(); status != 0 {
		attrs = append(attrs, slog.Int("status", status))
	}
	for _, kv := range [...][2]string{
		{"user_id", event.UserID},
		{"identifier", event.Identifier},
		{"method", event.Method},
		{"path", event.Path},
		{"client_ip", event.ClientIP},
		{"reason", event.Reason},
	} {
		if kv[1] != "" {
			attrs = append(attrs, slog.String(kv[0], kv[1]))
		}
	}
	s.logger.LogAttrs(ctx, level, "audit", attrs...)
}
