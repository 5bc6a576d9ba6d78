// Package mssql implements the registry capability for SQL Server-hosted
// registration schemas via github.com/microsoft/go-mssqldb over database/sql.
// Credentials are carried in the DSN; the DSN is validated up front so
// obvious mistakes fail before connecting.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"chemsearch/internal/registry"
)

// Conn is an MSSQL-backed registry.Conn.
type Conn struct {
	db   *sql.DB
	bind string
}

var newConn = NewConn

// NewConn validates the DSN, opens the database, and pings it.
func NewConn(ctx context.Context, cfg registry.Config) (*Conn, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Conn{db: db, bind: cfg.BindName()}, nil
}

// Query binds id to the template's single placeholder and fetches all rows.
func (c *Conn) Query(ctx context.Context, query string, id any) ([][]any, error) {
	q, err := registry.RewriteBind(query, c.bind, "@p1")
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("mssql: query: %w", err)
	}
	defer rows.Close()
	return registry.ScanAll(rows)
}

// Close closes the underlying database handle.
func (c *Conn) Close() { _ = c.db.Close() }

func init() {
	registry.Register("mssql", func(ctx context.Context, cfg registry.Config) (registry.Conn, error) {
		return newConn(ctx, cfg)
	})
}
