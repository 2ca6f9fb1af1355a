package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinSecretBytes is the shortest accepted HS256 secret.
	MinSecretBytes = 16
	// MaxLeeway bounds the tolerated clock skew on "exp".
	MaxLeeway = 2 * time.Minute
)

var (
	// ErrSecretTooShort is returned by NewManager for a secret under MinSecretBytes.
	ErrSecretTooShort = errors.New("session signing secret too short")
	// ErrInvalidLeeway is returned by NewManager for a leeway outside [0, MaxLeeway].
	ErrInvalidLeeway = errors.New("invalid leeway")
	// ErrMissingSessionID is returned when a token is issued or parsed without "sid".
	ErrMissingSessionID = errors.New("token carries no session id")
)

// Config configures a Manager. It is read once by NewManager.
type Config struct {
	// Secret is the HS256 key.
	Secret []byte
	// Issuer is written to "iss" and required on parse. Empty skips the check.
	Issuer string
	Leeway time.Duration
	// Clock overrides time.Now for issuing and validating tokens.
	Clock func() time.Time
}

// SessionClaims is the token payload.
type SessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager turns session ids into HS256-signed cookie values and back. It
// implements session.CookieCodec, is immutable after NewManager and safe for
// concurrent use.
type Manager struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrSecretTooShort, MinSecretBytes, len(cfg.Secret))
	}
	if cfg.Leeway < 0 || cfg.Leeway > MaxLeeway {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLeeway, cfg.Leeway)
	}

	m := &Manager{
		secret: append([]byte(nil), cfg.Secret...),
		issuer: cfg.Issuer,
		now:    cfg.Clock,
	}
	if m.now == nil {
		m.now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	m.parser = jwt.NewParser(opts...)
	return m, nil
}

// Encode signs a token for sessionID. The "exp" claim mirrors the stored
// session expiry; a zero expiresAt omits it, matching sessions that never
// expire.
func (m *Manager) Encode(sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", ErrMissingSessionID
	}
	claims := SessionClaims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   m.issuer,
			IssuedAt: jwt.NewNumericDate(m.now()),
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Claims verifies value and returns its payload.
func (m *Manager) Claims(value string) (*SessionClaims, error) {
	var claims SessionClaims
	if _, err := m.parser.ParseWithClaims(value, &claims, m.key); err != nil {
		return nil, err
	}
	if claims.SID == "" {
		return nil, ErrMissingSessionID
	}
	return &claims, nil
}

// Decode implements session.CookieCodec. A tampered, expired or foreign
// token reports no session.
func (m *Manager) Decode(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	claims, err := m.Claims(value)
	if err != nil {
		return "", false
	}
	return claims.SID, true
}

func (m *Manager) key(*jwt.Token) (any, error) {
	return m.secret, nil
}
