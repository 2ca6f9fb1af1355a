package goGate

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// Config is read once by Builder.Build and treated as immutable afterwards.
type Config struct {
	Strategy StrategyKind
	// ExcludedPaths bypass authentication. Entries are matched exactly after
	// trailing-slash normalization; there is no prefix or wildcard matching.
	ExcludedPaths []string
	Session       SessionConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
	Logging       LoggingConfig
	LoginThrottle LoginThrottleConfig
}

/*
====================================
STRATEGY SELECTION
====================================
*/

// StrategyKind names an authentication strategy. Values match the AUTH_TYPE
// environment variable.
type StrategyKind string

const (
	// StrategyDisabled turns the gate off.
	StrategyDisabled StrategyKind = ""
	// StrategyNull protects every non-exempt route and accepts no credentials.
	StrategyNull StrategyKind = "auth"
	// StrategyBasic authenticates HTTP Basic credentials.
	StrategyBasic StrategyKind = "basic_auth"
	// StrategySession authenticates a session cookie; sessions never expire.
	StrategySession StrategyKind = "session_auth"
	// StrategySessionExpiring authenticates a session cookie with a fixed lifetime.
	StrategySessionExpiring StrategyKind = "session_exp_auth"
	// StrategySessionPersisted is StrategySessionExpiring over a durable backend.
	StrategySessionPersisted StrategyKind = "session_db_auth"
)

// ParseStrategyKind converts an AUTH_TYPE value. Unknown names return
// ErrUnknownStrategy; the process must refuse to start on it.
func ParseStrategyKind(name string) (StrategyKind, error) {
	kind := StrategyKind(strings.TrimSpace(name))
	if !kind.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return kind, nil
}

func (k StrategyKind) valid() bool {
	switch k {
	case StrategyDisabled, StrategyNull, StrategyBasic, StrategySession,
		StrategySessionExpiring, StrategySessionPersisted:
		return true
	}
	return false
}

// UsesSessions reports whether the strategy authenticates session cookies.
func (k StrategyKind) UsesSessions() bool {
	return k == StrategySession || k == StrategySessionExpiring || k == StrategySessionPersisted
}

func (k StrategyKind) String() string {
	if k == StrategyDisabled {
		return "disabled"
	}
	return string(k)
}

// DefaultExcludedPaths is the exemption list applied by DefaultConfig.
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the session cookie and session lifetime.
type SessionConfig struct {
	CookieName string
	// Duration is the lifetime of sessions created by the expiring and
	// persisted strategies. Zero creates sessions without expiry.
	Duration       time.Duration
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
	// SigningKey, when set, makes session cookies HS256-signed tokens instead
	// of bare session ids.
	SigningKey []byte
}

func (s SessionConfig) cookieOptions() session.CookieOptions {
	return session.CookieOptions{
		Name:     s.CookieName,
		Path:     s.CookiePath,
		Domain:   s.CookieDomain,
		Secure:   s.CookieSecure,
		SameSite: s.CookieSameSite,
	}
}

/*
====================================
AUDIT / METRICS / LOGGING
====================================
*/

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// LoginThrottleConfig limits failed logins per identifier, and optionally per
// client IP, in fixed windows. It needs a Redis client set with
// Builder.WithLoginThrottle.
type LoginThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Cooldown    time.Duration
	PerIP       bool
}

// LoggingConfig lists attribute keys redacted in addition to the built-in
// PII fields.
type LoggingConfig struct {
	RedactKeys []string
}

// DefaultConfig returns a configuration with the gate disabled, the default
// exemption list and 15-minute sessions.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyDisabled,
		ExcludedPaths: append([]string(nil), DefaultExcludedPaths...),
		Session: SessionConfig{
			CookieName:     session.DefaultCookieName,
			Duration:       15 * time.Minute,
			CookiePath:     "/",
			CookieSameSite: http.SameSiteLaxMode,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		LoginThrottle: LoginThrottleConfig{
			Enabled:     false,
			MaxAttempts: 5,
			Cooldown:    15 * time.Minute,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.ExcludedPaths = append([]string(nil), cfg.ExcludedPaths...)
	out.Session.SigningKey = cloneBytes(cfg.Session.SigningKey)
	out.Logging.RedactKeys = append([]string(nil), cfg.Logging.RedactKeys...)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var errs []error

	if !c.Strategy.valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(c.Strategy)))
	}

	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session cookie name must not be empty"))
	} else if strings.ContainsAny(c.Session.CookieName, " \t\r\n;,=\"") {
		errs = append(errs, fmt.Errorf("session cookie name %q contains invalid characters", c.Session.CookieName))
	}
	if c.Session.Duration < 0 {
		errs = append(errs, errors.New("session duration must be >= 0"))
	}
	if n := len(c.Session.SigningKey); n > 0 && n < jwt.MinSecretBytes {
		errs = append(errs, fmt.Errorf("session signing key must be at least %d bytes", jwt.MinSecretBytes))
	}

	for _, p := range c.ExcludedPaths {
		if p != "" && !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("excluded path %q must start with /", p))
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		errs = append(errs, errors.New("audit buffer size must be > 0"))
	}
	if c.LoginThrottle.Enabled {
		if c.LoginThrottle.MaxAttempts <= 0 {
			errs = append(errs, errors.New("login throttle max attempts must be > 0"))
		}
		if c.LoginThrottle.Cooldown <= 0 {
			errs = append(errs, errors.New("login throttle cooldown must be > 0"))
		}
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		errs = append(errs, errors.New("latency histograms require metrics to be enabled"))
	}

	return errors.Join(errs...)
}
