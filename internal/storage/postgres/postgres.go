// Package postgres stores saved games in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
)

// PingTimeout bounds every reachability check made while opening a store.
const PingTimeout = 5 * time.Second

// ErrSchemaMissing is returned by Open when the saves table has not been migrated.
var ErrSchemaMissing = errors.New("postgres: saves table not found, apply migrations first")

// Pool is the connection pool behind a save store.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and waits up to
// PingTimeout for it to answer.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a reachable Pool or a non-nil error; no pool is leaked on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	raw, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{pool: raw}
	if err := p.Health(ctx, PingTimeout); err != nil {
		raw.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return p, nil
}

// Health checks that the database answers within timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// HasSaveSchema reports whether the saves table exists.
func (p *Pool) HasSaveSchema(ctx context.Context) (bool, error) {
	var found bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('saves') IS NOT NULL`).Scan(&found); err != nil {
		return false, fmt.Errorf("checking saves table: %w", err)
	}
	return found, nil
}

// Close releases all pool resources.
func (p *Pool) Close() { p.pool.Close() }

// DB returns the underlying pgx pool.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }

// Open connects to the database and returns a save repository over it, plus
// the function that closes the pool.
//
// Postcondition: On success the database answered a health check and holds
// the saves table; otherwise the error wraps the failing step and nothing is
// left open. A missing table yields ErrSchemaMissing.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*SaveRepository, func(), error) {
	start := time.Now()
	p, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	ok, err := p.HasSaveSchema(ctx)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	if !ok {
		p.Close()
		return nil, nil, ErrSchemaMissing
	}
	logger.Info("save store opened",
		zap.String("driver", "postgres"),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return NewSaveRepository(p.DB()), p.Close, nil
}
