package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, clock *stepClock) *Manager {
	t.Helper()
	cfg := Config{Secret: testSecret, Issuer: "gogate"}
	if clock != nil {
		cfg.Clock = clock.Now
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	if _, err := NewManager(Config{Secret: []byte("short")}); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
	for _, leeway := range []time.Duration{-time.Second, MaxLeeway + time.Second} {
		if _, err := NewManager(Config{Secret: testSecret, Leeway: leeway}); !errors.Is(err, ErrInvalidLeeway) {
			t.Fatalf("leeway %v: expected ErrInvalidLeeway, got %v", leeway, err)
		}
	}
}

func TestSecretIsCopied(t *testing.T) {
	secret := append([]byte(nil), testSecret...)
	m, err := NewManager(Config{Secret: secret})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	value, err := m.Encode("sid-1", time.Time{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	secret[0] ^= 0xff
	if _, ok := m.Decode(value); !ok {
		t.Fatal("mutating the caller's secret must not affect the manager")
	}
}

func TestEncodeDecodeCarriesSessionExpiry(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	expiresAt := clock.now.Add(15 * time.Minute)

	value, err := m.Encode("sid-1", expiresAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if sid, ok := m.Decode(value); !ok || sid != "sid-1" {
		t.Fatalf("expected sid-1, got %q ok=%v", sid, ok)
	}
	claims, err := m.Claims(value)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt) || claims.Issuer != "gogate" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	clock.now = expiresAt.Add(time.Second)
	if _, ok := m.Decode(value); ok {
		t.Fatal("expected token to expire with the session")
	}
}

func TestSessionWithoutExpiryHasNoExpClaim(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)

	value, err := m.Encode("sid-2", time.Time{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	clock.now = clock.now.AddDate(5, 0, 0)
	claims, err := m.Claims(value)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("expected no exp claim, got %v", claims.ExpiresAt)
	}
}

func TestDecodeRejectsForeignValues(t *testing.T) {
	m := newTestManager(t, nil)

	value, err := m.Encode("sid-1", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	parts := strings.Split(value, ".")
	payload := []byte(parts[1])
	payload[0] ^= 1
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	otherKey, _ := NewManager(Config{Secret: []byte("another-secret-another-secret"), Issuer: "gogate"})
	foreign, err := otherKey.Encode("sid-1", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	otherIssuer, _ := NewManager(Config{Secret: testSecret, Issuer: "elsewhere"})
	wrongIssuer, err := otherIssuer.Encode("sid-1", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	noSID, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: gjwt.RegisteredClaims{Issuer: "gogate"},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	hs512, err := gjwt.NewWithClaims(gjwt.SigningMethodHS512, SessionClaims{
		SID:              "sid-1",
		RegisteredClaims: gjwt.RegisteredClaims{Issuer: "gogate"},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"empty":        "",
		"plain id":     "plain-session-id",
		"tampered":     tampered,
		"other secret": foreign,
		"other issuer": wrongIssuer,
		"no sid":       noSID,
		"other alg":    hs512,
	}
	for name, v := range cases {
		if _, ok := m.Decode(v); ok {
			t.Fatalf("%s: expected value to be rejected", name)
		}
	}
}

func TestLeewayToleratesSkew(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m, err := NewManager(Config{Secret: testSecret, Leeway: 30 * time.Second, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	value, err := m.Encode("sid-1", clock.now.Add(time.Minute))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	clock.now = clock.now.Add(time.Minute + 15*time.Second)
	if _, ok := m.Decode(value); !ok {
		t.Fatal("expected token within leeway to pass")
	}
	clock.now = clock.now.Add(time.Minute)
	if _, ok := m.Decode(value); ok {
		t.Fatal("expected token beyond leeway to fail")
	}
}

func TestEncodeRequiresSessionID(t *testing.T) {
	if _, err := newTestManager(t, nil).Encode("", time.Time{}); !errors.Is(err, ErrMissingSessionID) {
		t.Fatalf("expected ErrMissingSessionID, got %v", err)
	}
}
