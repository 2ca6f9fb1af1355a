package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

type decisionContextKey struct{}

// DecisionFromContext returns the decision Guard made for the request.
func DecisionFromContext(ctx context.Context) (goGate.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(goGate.Decision)
	return d, ok
}

// Guard enforces gate on every request. A nil gate rejects everything with 401.
func Guard(gate *goGate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(withClientIP(r))
			d := gate.Evaluate(r)
			if !d.Allowed() {
				writeError(w, d.HTTPStatus())
				return
			}
			next.ServeHTTP(w, r.WithContext(withDecision(r.Context(), d)))
		})
	}
}

// withClientIP records the peer address for audit events.
func withClientIP(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return r.Context()
	}
	return goGate.WithClientIP(r.Context(), host)
}

func withDecision(ctx context.Context, d goGate.Decision) context.Context {
	ctx = context.WithValue(ctx, decisionContextKey{}, d)
	if d.Status == goGate.DecisionAuthenticated {
		ctx = goGate.WithUser(ctx, d.User)
	}
	return ctx
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int) {
	msg := http.StatusText(status)
	switch status {
	case http.StatusUnauthorized:
		msg = "Unauthorized"
	case http.StatusForbidden:
		msg = "Forbidden"
	case http.StatusNotFound:
		msg = "Not found"
	}
	writeJSON(w, status, ErrorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NotFound writes the JSON 404 body. Routers use it as their not-found handler.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound)
}

// Unauthorized and Forbidden let routes trigger the error bodies directly.
func Unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized)
}

func Forbidden(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusForbidden)
}
