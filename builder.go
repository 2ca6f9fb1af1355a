package goGate

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGate/exclusion"
	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/logging"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// Builder assembles a Gate. A Builder is single use.
type Builder struct {
	config Config

	users     UserRepository
	backend   session.Backend
	store     session.Store
	codec     session.CookieCodec
	auditSink AuditSink
	redis     redis.UniversalClient
	logger    *slog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStrategy selects the strategy.
func (b *Builder) WithStrategy(kind StrategyKind) *Builder {
	b.config.Strategy = kind
	return b
}

// WithExcludedPaths replaces the exemption list.
func (b *Builder) WithExcludedPaths(paths ...string) *Builder {
	b.config.ExcludedPaths = append([]string(nil), paths...)
	return b
}

// WithUserRepository sets the user collaborator. Required by every strategy
// that resolves users.
func (b *Builder) WithUserRepository(users UserRepository) *Builder {
	b.users = users
	return b
}

// WithSessionBackend sets the durable backend used by StrategySessionPersisted.
func (b *Builder) WithSessionBackend(backend session.Backend) *Builder {
	b.backend = backend
	return b
}

// WithSessionStore overrides the store chosen for a session strategy.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithCookieCodec overrides how session ids are carried in cookies.
func (b *Builder) WithCookieCodec(codec session.CookieCodec) *Builder {
	b.codec = codec
	return b
}

// WithAuditSink sets the audit destination. Audit must also be enabled in
// Config.Audit.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLoginThrottle enables the failed-login throttle with counters kept in
// client. Limits come from Config.LoginThrottle.
func (b *Builder) WithLoginThrottle(client redis.UniversalClient) *Builder {
	b.redis = client
	b.config.LoginThrottle.Enabled = client != nil
	return b
}

// WithLogger sets the logger. Its handler is wrapped so PII fields are redacted.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the time source of the gate and its in-memory or
// persistent session store.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	if !enabled {
		b.config.Metrics.EnableLatencyHistograms = false
	}
	return b
}

// Build validates the configuration and returns the Gate.
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	base := b.logger
	if base == nil {
		base = logging.Discard()
	}
	logger := slog.New(logging.NewRedactingHandler(base.Handler(), cfg.Logging.RedactKeys...)).
		With("component", "gogate")

	metrics := NewMetrics(cfg.Metrics)

	strategy, err := b.buildStrategy(cfg, baseStrategy{
		kind:       cfg.Strategy,
		matcher:    exclusion.NewMatcher(cfg.ExcludedPaths),
		cookieName: cfg.Session.CookieName,
		logger:     logger,
		metrics:    metrics,
	}, now)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.LoginThrottle.Enabled {
		if b.redis == nil {
			return nil, ErrThrottleRedisRequired
		}
		limiter = rate.New(b.redis, rate.Config{
			MaxAttempts: cfg.LoginThrottle.MaxAttempts,
			Cooldown:    cfg.LoginThrottle.Cooldown,
			PerIP:       cfg.LoginThrottle.PerIP,
		})
	}

	gate := &Gate{
		config:   cfg,
		strategy: strategy,
		users:    b.users,
		logger:   logger,
		metrics:  metrics,
		limiter:  limiter,
		now:      now,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	b.built = true
	logger.Info("gate ready", "strategy", cfg.Strategy.String(), "excluded_paths", len(cfg.ExcludedPaths))

	return gate, nil
}

func (b *Builder) buildStrategy(cfg Config, base baseStrategy, now func() time.Time) (Strategy, error) {
	switch cfg.Strategy {
	case StrategyDisabled:
		return nil, nil
	case StrategyNull:
		return &NullAuth{baseStrategy: base}, nil
	case StrategyBasic:
		if b.users == nil {
			return nil, ErrUserRepositoryRequired
		}
		return &BasicAuth{baseStrategy: base, users: b.users}, nil
	}

	if b.users == nil {
		return nil, ErrUserRepositoryRequired
	}

	var ttl time.Duration
	if cfg.Strategy != StrategySession {
		ttl = cfg.Session.Duration
	}

	store := b.store
	if store == nil {
		switch cfg.Strategy {
		case StrategySessionPersisted:
			if b.backend == nil {
				return nil, ErrSessionBackendRequired
			}
			store = session.NewPersistentStore(b.backend, session.WithClock(now))
		default:
			store = session.NewMemoryStore(session.WithClock(now))
		}
	}

	codec, err := b.cookieCodec(cfg, now)
	if err != nil {
		return nil, err
	}

	return &SessionAuth{
		baseStrategy: base,
		users:        b.users,
		store:        store,
		codec:        codec,
		ttl:          ttl,
	}, nil
}

func (b *Builder) cookieCodec(cfg Config, now func() time.Time) (session.CookieCodec, error) {
	if b.codec != nil {
		return b.codec, nil
	}
	if len(cfg.Session.SigningKey) == 0 {
		return session.PlainCookieCodec{}, nil
	}
	manager, err := jwt.NewManager(jwt.Config{
		Secret: cfg.Session.SigningKey,
		Issuer: "gogate",
		Clock:  now,
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}
