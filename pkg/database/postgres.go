package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pool sizing. Booking transactions are short but hold row locks, so the
// pool stays small enough that lock waits do not pile up connections.
const (
	defaultMaxConns        = 20
	defaultMinConns        = 2
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = 5 * time.Minute
)

// NewPostgresPool creates a pgx connection pool for PostgreSQL. Pool limits
// given in the DSN (pool_max_conns etc.) take precedence over the defaults.
func NewPostgresPool(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config, err := parsePoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("PostgreSQL connection pool established", zap.Int32("max_conns", config.MaxConns))
	return pool, nil
}

func parsePoolConfig(dsn string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	if !hasParam(dsn, "pool_max_conns") {
		config.MaxConns = defaultMaxConns
	}
	if !hasParam(dsn, "pool_min_conns") {
		config.MinConns = defaultMinConns
	}
	if !hasParam(dsn, "pool_max_conn_lifetime") {
		config.MaxConnLifetime = defaultMaxConnLifetime
	}
	if !hasParam(dsn, "pool_max_conn_idle_time") {
		config.MaxConnIdleTime = defaultMaxConnIdleTime
	}
	return config, nil
}

func hasParam(dsn, name string) bool {
	return strings.Contains(dsn, name+"=")
}
