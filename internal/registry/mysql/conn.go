// Package mysql implements the registry capability for MySQL-hosted
// registration schemas via github.com/go-sql-driver/mysql over database/sql.
// Injected credentials are merged into the parsed DSN rather than appended
// textually.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"chemsearch/internal/registry"
)

// Conn is a MySQL-backed registry.Conn.
type Conn struct {
	db   *sql.DB
	bind string
}

var newConn = NewConn

// NewConn parses the DSN, applies credential overrides, opens and pings.
func NewConn(ctx context.Context, cfg registry.Config) (*Conn, error) {
	dc, err := gomysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: dsn: %w", err)
	}
	if cfg.User != "" {
		dc.User = cfg.User
	}
	if cfg.Secret != "" {
		dc.Passwd = cfg.Secret
	}

	db, err := sql.Open("mysql", dc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
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
		return nil, fmt.Errorf("mysql: query: %w", err)
	}
	defer rows.Close()
	return registry.ScanAll(rows)
}

// Close closes the underlying database handle.
func (c *Conn) Close() { _ = c.db.Close() }

func init() {
	registry.Register("mysql", func(ctx context.Context, cfg registry.Config) (registry.Conn, error) {
		return newConn(ctx, cfg)
	})
}
