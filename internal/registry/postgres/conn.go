// Package postgres implements the registry capability for PostgreSQL-hosted
// registration schemas using pgx v5. The backend registers itself with the
// registry factory under kind "postgres"; callers normally reach it through
// registry.Open rather than importing this package.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chemsearch/internal/registry"
)

// Conn is a Postgres-backed registry.Conn.
type Conn struct {
	pool *pgxpool.Pool
	bind string
}

// newConn is a test hook pointing at NewConn by default.
var newConn = NewConn

// NewConn opens a pool for the given config and verifies connectivity with a
// ping, so a bad endpoint fails before the first query of a batch.
func NewConn(ctx context.Context, cfg registry.Config) (*Conn, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.User != "" {
		pc.ConnConfig.User = cfg.User
	}
	if cfg.Secret != "" {
		pc.ConnConfig.Password = cfg.Secret
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Conn{pool: pool, bind: cfg.BindName()}, nil
}

// Query binds id to the template's single placeholder and fetches all rows.
func (c *Conn) Query(ctx context.Context, query string, id any) ([][]any, error) {
	q, err := registry.RewriteBind(query, c.bind, "$1")
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: values: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (c *Conn) Close() { c.pool.Close() }

func init() {
	registry.Register("postgres", func(ctx context.Context, cfg registry.Config) (registry.Conn, error) {
		return newConn(ctx, cfg)
	})
}
