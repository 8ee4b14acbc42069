package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaiosophy/content-notifier/internal/config"
)

const applicationName = "content-notifier"

// DB wraps the PostgreSQL connection pool backing the dispatch log
type DB struct {
	Pool *pgxpool.Pool
}

// New applies pending migrations when enabled, then opens the pool and
// verifies connectivity
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.AutoMigrate {
		if err := Migrate(cfg.URL); err != nil {
			return nil, err
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// Health pings the database and reports pool exhaustion
func (db *DB) Health(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	stat := db.Pool.Stat()
	if stat.MaxConns() > 0 && stat.AcquiredConns() >= stat.MaxConns() && stat.EmptyAcquireCount() > 0 {
		return fmt.Errorf("postgres pool exhausted: %d/%d connections in use", stat.AcquiredConns(), stat.MaxConns())
	}
	return nil
}
