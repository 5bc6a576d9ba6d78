package registry

import (
	"database/sql"
	"fmt"
	"regexp"
)

// RewriteBind replaces the single named placeholder (e.g. ":id") in the query
// template with the backend-native placeholder (e.g. "$1", "@p1", "?"). The
// template must contain the marker exactly once; zero or multiple occurrences
// are configuration errors, reported before any query runs. The marker is
// anchored on both sides so neither a longer name (":ids") nor a Postgres
// cast ("x::id") counts as an occurrence.
func RewriteBind(query, marker, native string) (string, error) {
	re, err := regexp.Compile(`(?:^|[^:])` + regexp.QuoteMeta(marker) + `\b`)
	if err != nil {
		return "", fmt.Errorf("registry: bad bind marker %q: %w", marker, err)
	}
	switch n := len(re.FindAllStringIndex(query, -1)); n {
	case 1:
		// The match carries the anchoring character (if any) in front of
		// the marker; keep it and swap only the marker itself.
		return re.ReplaceAllStringFunc(query, func(m string) string {
			return m[:len(m)-len(marker)] + native
		}), nil
	case 0:
		return "", fmt.Errorf("registry: query template does not contain bind marker %q", marker)
	default:
		return "", fmt.Errorf("registry: query template contains bind marker %q %d times, want exactly one", marker, n)
	}
}

// ScanAll drains a database/sql result set into row slices. It is shared by
// the backends built on database/sql (mssql, mysql, sqlite); the pgx backend
// uses the native rows.Values path instead.
func ScanAll(rows *sql.Rows) ([][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("registry: columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("registry: scan: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: rows: %w", err)
	}
	return out, nil
}
