package goGate

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newThrottledGate(t *testing.T, max int) (*Gate, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	g := buildGate(t, StrategySession, newFakeUsers(), func(b *Builder) {
		b.WithLoginThrottle(rdb)
		b.config.LoginThrottle.MaxAttempts = max
		b.config.LoginThrottle.Cooldown = time.Minute
	})
	return g, mr
}

func TestLoginThrottleBlocksRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	g, mr := newThrottledGate(t, 2)

	for i := 0; i < 2; i++ {
		if _, err := g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// The correct password is refused while the window is open.
	if _, err := g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "secret1"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
	if got := g.MetricsSnapshot().Counters[MetricLoginRateLimited]; got != 1 {
		t.Fatalf("expected one rate-limited login, got %d", got)
	}

	mr.FastForward(time.Minute + time.Second)
	if _, err := g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "secret1"); err != nil {
		t.Fatalf("expected login after window, got %v", err)
	}
}

func TestLoginThrottleResetsOnSuccess(t *testing.T) {
	ctx := context.Background()
	g, _ := newThrottledGate(t, 2)

	_, _ = g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "wrong")
	if _, err := g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, _ = g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "wrong")
	if _, err := g.Login(ctx, httptest.NewRecorder(), "alice@example.com", "secret1"); err != nil {
		t.Fatalf("expected success to have reset the counter, got %v", err)
	}
}

func TestLoginThrottleFailsOpenWhenRedisIsDown(t *testing.T) {
	g, mr := newThrottledGate(t, 1)
	mr.Close()

	if _, err := g.Login(context.Background(), httptest.NewRecorder(), "alice@example.com", "secret1"); err != nil {
		t.Fatalf("expected login to proceed without the throttle, got %v", err)
	}
	if got := g.MetricsSnapshot().Counters[MetricCollaboratorFailure]; got == 0 {
		t.Fatal("expected throttle failures to be counted")
	}
}

func TestBuildThrottleRequiresRedis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategySession
	cfg.LoginThrottle.Enabled = true

	_, err := New().WithConfig(cfg).WithUserRepository(newFakeUsers()).Build()
	if !errors.Is(err, ErrThrottleRedisRequired) {
		t.Fatalf("expected ErrThrottleRedisRequired, got %v", err)
	}
}
