package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/internal/config"
	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/session"
	"github.com/MrEthical07/goGate/users"
)

func serveCmd() *cobra.Command {
	var seeds []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the API server. Configuration is read from the environment
(AUTH_TYPE, SESSION_NAME, SESSION_DURATION, ...) and an optional .env file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, seeds)
		},
	}

	cmd.Flags().StringSliceVar(&seeds, "user", nil, "seed a user as email:password (repeatable)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, seeds []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	hasher, err := password.New(cfg.PasswordHasher)
	if err != nil {
		return err
	}
	repo, err := users.NewMemoryRepository(hasher)
	if err != nil {
		return err
	}
	if err := seedUsers(repo, seeds); err != nil {
		return err
	}

	builder := goGate.New().
		WithConfig(cfg.GateConfig()).
		WithUserRepository(repo).
		WithLogger(logger)
	if cfg.AuditEnabled {
		builder.WithAuditSink(goGate.NewLogSink(logger.With("component", "audit")))
	}

	var rdb redis.UniversalClient
	needRedis := cfg.LoginMaxAttempts > 0 ||
		(cfg.Strategy() == goGate.StrategySessionPersisted && cfg.SessionBackend == config.BackendRedis)
	if needRedis {
		client, closeRedis, err := openRedis(ctx, cfg.RedisAddr, logger)
		if err != nil {
			return err
		}
		defer closeRedis()
		rdb = client
	}

	if cfg.LoginMaxAttempts > 0 {
		builder.WithLoginThrottle(rdb)
	}

	if cfg.Strategy() == goGate.StrategySessionPersisted {
		backend, closeBackend, err := openBackend(ctx, cfg, rdb)
		if err != nil {
			return err
		}
		defer closeBackend()
		builder.WithSessionBackend(backend)
	}

	gate, err := builder.Build()
	if err != nil {
		return err
	}
	defer gate.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(gate, repo, cfg.MetricsEnabled),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "strategy", cfg.Strategy().String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seedUsers(repo *users.MemoryRepository, seeds []string) error {
	for _, s := range seeds {
		email, pw, ok := strings.Cut(s, ":")
		if !ok {
			return fmt.Errorf("invalid --user %q: want email:password", s)
		}
		if _, err := repo.Add(goGate.User{Email: email}, pw); err != nil {
			return fmt.Errorf("seed %s: %w", email, err)
		}
	}
	return nil
}

// openBackend returns the session backend named by SESSION_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config, rdb redis.UniversalClient) (session.Backend, func(), error) {
	if cfg.SessionBackend != config.BackendPostgres {
		return session.NewRedisBackend(rdb, ""), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	backend := session.NewPostgresBackend(pool, session.DefaultPostgresTable)
	if err := backend.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return backend, pool.Close, nil
}

// openRedis connects to addr, or to an in-process miniredis when addr is empty.
func openRedis(ctx context.Context, addr string, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	var mr *miniredis.Miniredis
	if addr == "" {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		addr = mr.Addr()
		logger.Warn("REDIS_ADDR not set, using in-process miniredis")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	closeAll := func() {
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, closeAll, nil
}
