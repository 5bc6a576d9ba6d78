// Package registry abstracts the chemical-registration database behind a
// minimal query capability. Concrete backends (Postgres, MSSQL, MySQL,
// SQLite) live in subpackages and wire themselves into the factory by
// registering a constructor at init time, so callers select a backend by
// kind string without importing driver packages directly.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config holds backend selection and connection parameters. User and Secret
// are injected explicitly (typically from the environment) rather than read
// as ambient process state, so the capability stays testable.
type Config struct {
	// Kind selects the backend, e.g. "postgres", "mssql", "mysql", "sqlite".
	Kind string

	// DSN is the backend-native connection string.
	DSN string

	// User and Secret override any credentials embedded in the DSN for
	// backends that support separate credentials (postgres, mysql).
	User   string
	Secret string

	// Bind is the named placeholder used in query templates, without the
	// leading colon. Empty means "id".
	Bind string
}

// BindName returns the placeholder name with its colon prefix.
func (c Config) BindName() string {
	if c.Bind == "" {
		return ":id"
	}
	return ":" + c.Bind
}

// Conn is an open, exclusively owned connection to the registration database.
// It is acquired once per batch and must be released via Close on every exit
// path; implementations are not safe for concurrent use.
type Conn interface {
	// Query executes the template with id bound to its single placeholder
	// and returns every resulting row. Row values keep their driver types;
	// large structural payloads may surface as []byte or driver wrappers.
	Query(ctx context.Context, query string, id any) ([][]any, error)

	// Close releases the connection. Safe to call exactly once.
	Close()
}

// Factory constructs a Conn for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Conn, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. It is
// called from backend packages' init functions.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Open connects to the registration database using the registered factory
// for cfg.Kind. Failures are reported as *ConnectError.
func Open(ctx context.Context, cfg Config) (Conn, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, &ConnectError{Kind: cfg.Kind, Err: fmt.Errorf("unsupported registry.kind=%s", cfg.Kind)}
	}
	conn, err := fn(ctx, cfg)
	if err != nil {
		return nil, &ConnectError{Kind: cfg.Kind, Err: err}
	}
	return conn, nil
}

// ConnectError reports a failure to establish the database capability. It is
// always returned before any query has run.
type ConnectError struct {
	Kind string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("registry: connect (kind=%s): %v", e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }
