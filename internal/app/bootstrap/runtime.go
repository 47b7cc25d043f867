package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/clinic-triage/internal/config"
	"github.com/wolfman30/clinic-triage/pkg/logging"
)

// Runtime holds the shared connections. Any of them may be nil when the
// configuration does not call for it.
type Runtime struct {
	Pool  *pgxpool.Pool
	SQL   *sql.DB
	Redis *redis.Client
}

// Close releases every open connection.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.SQL != nil {
		_ = r.SQL.Close()
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
}

// OpenRuntime connects to Postgres when DATABASE_URL is set and to Redis when
// a backend needs it. database/sql consumers share the pgx pool.
func OpenRuntime(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	rt := &Runtime{}
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		rt.Pool = pool
		rt.SQL = stdlib.OpenDBFromPool(pool)
		logger.Info("postgres connected")
	}

	if cfg.NeedsRedis() {
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			rt.Close()
			return nil, fmt.Errorf("bootstrap: redis at %s is not reachable", cfg.RedisAddr)
		}
		rt.Redis = client
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}
	return rt, nil
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
