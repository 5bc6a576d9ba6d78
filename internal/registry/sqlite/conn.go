// Package sqlite implements the registry capability over a local SQLite file
// using the modernc.org/sqlite driver. It is the default backend for offline
// registry snapshots and for exercising the full pipeline without network
// access.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"chemsearch/internal/registry"
)

// Conn is a SQLite-backed registry.Conn.
type Conn struct {
	db   *sql.DB
	bind string
}

var newConn = NewConn

// NewConn opens the database file named by the DSN, e.g.:
//
//	"file:registry.db?mode=ro"
//	"registry.db"
func NewConn(ctx context.Context, cfg registry.Config) (*Conn, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Conn{db: db, bind: cfg.BindName()}, nil
}

// Query binds id to the template's single placeholder and fetches all rows.
func (c *Conn) Query(ctx context.Context, query string, id any) ([][]any, error) {
	q, err := registry.RewriteBind(query, c.bind, "?")
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()
	return registry.ScanAll(rows)
}

// Close closes the underlying database handle.
func (c *Conn) Close() { _ = c.db.Close() }

func init() {
	registry.Register("sqlite", func(ctx context.Context, cfg registry.Config) (registry.Conn, error) {
		return newConn(ctx, cfg)
	})
}
