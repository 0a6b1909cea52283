// Package postgres persists game snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/statengine/internal/config"
)

const applicationName = "statengine"

// ErrSchemaMissing is returned by Health when the snapshot table has not been
// migrated.
var ErrSchemaMissing = errors.New("postgres: game_snapshots table missing")

// Pool owns the pgx connection pool shared by the snapshot repository.
type Pool struct {
	pool *pgxpool.Pool
}

// PoolStats is a point-in-time view of pool usage.
type PoolStats struct {
	Total    int32
	Idle     int32
	Acquired int32
}

// NewPool connects to the database described by cfg.
//
// Precondition: cfg must pass config validation with Enabled set.
// Postcondition: Returns a pinged Pool or a non-nil error; no connection is
// left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database and checks that the snapshot schema is present,
// both within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	var present bool
	if err := p.pool.QueryRow(ctx,
		`SELECT to_regclass('game_snapshots') IS NOT NULL`,
	).Scan(&present); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Stats reports current connection usage.
func (p *Pool) Stats() PoolStats {
	s := p.pool.Stat()
	return PoolStats{
		Total:    s.TotalConns(),
		Idle:     s.IdleConns(),
		Acquired: s.AcquiredConns(),
	}
}

// Snapshots returns a repository bound to this pool.
func (p *Pool) Snapshots() *SnapshotRepository {
	return NewSnapshotRepository(p.pool)
}

// DB exposes the raw pool for tests and migrations.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

// Close releases every connection. The Pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}
