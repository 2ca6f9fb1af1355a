// Package config loads process configuration for cmd/gogate from the
// environment and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	goGate "github.com/MrEthical07/goGate"
)

// Session backends accepted in SESSION_BACKEND.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds process configuration loaded from the environment.
type Config struct {
	// AuthType selects the strategy (AUTH_TYPE). Empty disables the gate.
	AuthType string `mapstructure:"AUTH_TYPE"`
	// SessionName is the session cookie name.
	SessionName string `mapstructure:"SESSION_NAME"`
	// SessionDuration is the session lifetime in seconds. Zero means no expiry.
	SessionDuration int `mapstructure:"SESSION_DURATION"`
	// SessionBackend is redis or postgres; used by session_db_auth only.
	SessionBackend string `mapstructure:"SESSION_BACKEND"`
	// RedisAddr is host:port. Empty starts an in-process miniredis.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// DatabaseURL is the Postgres DSN for the postgres backend.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionSigningKey, when set, makes session cookies signed tokens.
	SessionSigningKey string `mapstructure:"SESSION_SIGNING_KEY"`
	// ExcludedPaths is a comma-separated list; empty keeps the default list.
	ExcludedPaths string `mapstructure:"EXCLUDED_PATHS"`
	APIHost       string `mapstructure:"API_HOST"`
	APIPort       int    `mapstructure:"API_PORT"`
	// PasswordHasher is argon2id or bcrypt.
	PasswordHasher string `mapstructure:"PASSWORD_HASHER"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	// AuditEnabled logs gate audit events through the process logger.
	AuditEnabled bool `mapstructure:"AUDIT_ENABLED"`
	// LoginMaxAttempts enables the Redis failed-login throttle when > 0.
	LoginMaxAttempts int `mapstructure:"LOGIN_MAX_ATTEMPTS"`
	// LoginCooldown is the throttle window in seconds.
	LoginCooldown int `mapstructure:"LOGIN_COOLDOWN"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Environment variables override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v.AutomaticEnv()

	v.SetDefault("AUTH_TYPE", "")
	v.SetDefault("SESSION_NAME", "session_id")
	v.SetDefault("SESSION_DURATION", 900)
	v.SetDefault("SESSION_BACKEND", BackendRedis)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SIGNING_KEY", "")
	v.SetDefault("EXCLUDED_PATHS", "")
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 5000)
	v.SetDefault("PASSWORD_HASHER", "argon2id")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 0)
	v.SetDefault("LOGIN_COOLDOWN", 900)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if _, err := goGate.ParseStrategyKind(cfg.AuthType); err != nil {
		return nil, fmt.Errorf("config: AUTH_TYPE: %w", err)
	}
	if cfg.SessionDuration < 0 {
		return nil, errors.New("config: SESSION_DURATION must be >= 0")
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return nil, errors.New("config: API_PORT must be between 1 and 65535")
	}
	if cfg.LoginMaxAttempts < 0 {
		return nil, errors.New("config: LOGIN_MAX_ATTEMPTS must be >= 0")
	}
	if cfg.LoginMaxAttempts > 0 && cfg.LoginCooldown <= 0 {
		return nil, errors.New("config: LOGIN_COOLDOWN must be > 0 when the login throttle is on")
	}
	switch cfg.SessionBackend {
	case BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" && cfg.AuthType == string(goGate.StrategySessionPersisted) {
			return nil, errors.New("config: DATABASE_URL must be set for the postgres session backend")
		}
	default:
		return nil, fmt.Errorf("config: SESSION_BACKEND must be %q or %q", BackendRedis, BackendPostgres)
	}

	return &cfg, nil
}

// Strategy returns the parsed AUTH_TYPE.
func (c *Config) Strategy() goGate.StrategyKind {
	kind, _ := goGate.ParseStrategyKind(c.AuthType)
	return kind
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.APIHost, strconv.Itoa(c.APIPort))
}

// ExcludedPathList splits EXCLUDED_PATHS. It returns nil when unset so the
// default exemption list applies.
func (c *Config) ExcludedPathList() []string {
	if c == nil || strings.TrimSpace(c.ExcludedPaths) == "" {
		return nil
	}
	parts := strings.Split(c.ExcludedPaths, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GateConfig translates the process configuration into a goGate.Config.
func (c *Config) GateConfig() goGate.Config {
	cfg := goGate.DefaultConfig()
	cfg.Strategy = c.Strategy()
	if paths := c.ExcludedPathList(); paths != nil {
		cfg.ExcludedPaths = paths
	}
	if c.SessionName != "" {
		cfg.Session.CookieName = c.SessionName
	}
	cfg.Session.Duration = time.Duration(c.SessionDuration) * time.Second
	if c.SessionSigningKey != "" {
		cfg.Session.SigningKey = []byte(c.SessionSigningKey)
	}
	if c.LoginMaxAttempts > 0 {
		cfg.LoginThrottle = goGate.LoginThrottleConfig{
			Enabled:     true,
			MaxAttempts: c.LoginMaxAttempts,
			Cooldown:    time.Duration(c.LoginCooldown) * time.Second,
			PerIP:       true,
		}
	}
	if !c.MetricsEnabled {
		cfg.Metrics = goGate.MetricsConfig{}
	}
	cfg.Audit.Enabled = c.AuditEnabled
	return cfg
}
