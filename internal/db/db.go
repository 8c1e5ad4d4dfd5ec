package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crucial707/automation-schedules/internal/config"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// Open returns the schedules store pool for cfg. The pool is sized from
// DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS and must answer a ping before use.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	pool, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := ready(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func ready(ctx context.Context, pool *sql.DB, cfg config.Config) error {
	pool.SetMaxOpenConns(cfg.DBMaxOpenConns)
	pool.SetMaxIdleConns(cfg.DBMaxIdleConns)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres %s:%s/%s: %w", cfg.DBHost, cfg.DBPort, cfg.DBName, err)
	}
	return nil
}
