package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strategy() != goGate.StrategyDisabled {
		t.Errorf("Strategy = %q, want disabled", cfg.Strategy())
	}
	if cfg.SessionName != "session_id" {
		t.Errorf("SessionName = %q, want session_id", cfg.SessionName)
	}
	if cfg.SessionDuration != 900 {
		t.Errorf("SessionDuration = %d, want 900", cfg.SessionDuration)
	}
	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr = %q, want 0.0.0.0:5000", cfg.Addr())
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled should default to true")
	}
	if cfg.ExcludedPathList() != nil {
		t.Errorf("ExcludedPathList = %v, want nil", cfg.ExcludedPathList())
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	t.Setenv("AUTH_TYPE", "session_exp_auth")
	t.Setenv("SESSION_NAME", "sid")
	t.Setenv("SESSION_DURATION", "60")
	t.Setenv("EXCLUDED_PATHS", "/api/v1/status/, /health/ ,")
	t.Setenv("API_PORT", "8080")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("SESSION_SIGNING_KEY", "0123456789abcdef")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_COOLDOWN", "30")
	t.Setenv("AUDIT_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strategy() != goGate.StrategySessionExpiring {
		t.Errorf("Strategy = %q", cfg.Strategy())
	}

	gc := cfg.GateConfig()
	if gc.Session.CookieName != "sid" || gc.Session.Duration != time.Minute {
		t.Errorf("session config = %+v", gc.Session)
	}
	if len(gc.ExcludedPaths) != 2 || gc.ExcludedPaths[1] != "/health/" {
		t.Errorf("ExcludedPaths = %v", gc.ExcludedPaths)
	}
	if gc.Metrics.Enabled {
		t.Error("metrics should be disabled")
	}
	if string(gc.Session.SigningKey) != "0123456789abcdef" {
		t.Errorf("SigningKey = %q", gc.Session.SigningKey)
	}
	if !gc.LoginThrottle.Enabled || gc.LoginThrottle.MaxAttempts != 3 || gc.LoginThrottle.Cooldown != 30*time.Second {
		t.Errorf("login throttle = %+v", gc.LoginThrottle)
	}
	if !gc.Audit.Enabled {
		t.Error("audit should be enabled")
	}
	if err := gc.Validate(); err != nil {
		t.Errorf("gate config invalid: %v", err)
	}
}

func TestLoad_RejectsUnknownAuthType(t *testing.T) {
	os.Clearenv()
	t.Setenv("AUTH_TYPE", "oauth")

	if _, err := Load(); !errors.Is(err, goGate.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"negative duration": {"SESSION_DURATION": "-1"},
		"bad port":          {"API_PORT": "70000"},
		"bad backend":       {"SESSION_BACKEND": "memcached"},
		"negative attempts": {"LOGIN_MAX_ATTEMPTS": "-1"},
		"zero cooldown":     {"LOGIN_MAX_ATTEMPTS": "3", "LOGIN_COOLDOWN": "0"},
		"postgres no dsn":   {"AUTH_TYPE": "session_db_auth", "SESSION_BACKEND": "postgres"},
	}
	for name, env := range cases {
		os.Clearenv()
		for k, v := range env {
			t.Setenv(k, v)
		}
		if _, err := Load(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_TYPE=basic_auth\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strategy() != goGate.StrategyBasic {
		t.Errorf("Strategy = %q, want basic_auth", cfg.Strategy())
	}
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_TYPE=\"basic_auth\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a malformed .env file")
	}
}
