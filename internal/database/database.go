package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool lifetimes are conservative: user lookups are short point queries, so
// connections recycle aggressively rather than lingering between login bursts.
const (
	connMaxLifetime   = 30 * time.Minute
	connMaxIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
)

// DB wraps the pgx connection pool backing the user record store.
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection with a ping before
// handing the pool to callers. Sizing comes from DB_MAX_CONNS / DB_MIN_CONNS.
func New(ctx context.Context, databaseURL string, maxConns int32, minConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = connMaxLifetime
	cfg.MaxConnIdleTime = connMaxIdleTime
	cfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected", "max_conns", maxConns, "min_conns", minConns)
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health pings the pool; the /health endpoint reports the result.
func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
