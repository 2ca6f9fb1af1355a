// Package logging wraps slog handlers so personal data never reaches log output.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Redacted replaces the value of every sensitive attribute.
const Redacted = "***"

// PIIFields are redacted by every handler built with NewRedactingHandler.
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

// RedactingHandler forwards records to the wrapped handler after replacing the
// values of sensitive keys, including keys nested in groups.
type RedactingHandler struct {
	next slog.Handler
	keys map[string]struct{}
}

// NewRedactingHandler wraps next. Keys are matched case-insensitively; extra
// keys extend PIIFields.
func NewRedactingHandler(next slog.Handler, extra ...string) *RedactingHandler {
	keys := make(map[string]struct{}, len(PIIFields)+len(extra))
	for _, k := range PIIFields {
		keys[k] = struct{}{}
	}
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keys[k] = struct{}{}
		}
	}
	return &RedactingHandler{next: next, keys: keys}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted), keys: h.keys}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func (h *RedactingHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}

	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: v}
	}

	group := v.Group()
	redacted := make([]any, len(group))
	for i, ga := range group {
		redacted[i] = h.redact(ga)
	}
	return slog.Group(a.Key, redacted...)
}
