// Package sqltext derives output column names from a SQL query template by
// purely textual inspection of its SELECT clause. It is not a SQL parser: the
// accepted grammar is a single SELECT followed by a flat, comma-separated list
// of (optionally schema- and table-qualified) column references, terminated by
// FROM. Function calls, sub-selects, and expressions containing commas are
// outside the grammar and produce either an error here or a schema mismatch
// downstream; they are never silently tolerated.
package sqltext

import (
	"fmt"
	"regexp"
	"strings"
)

var selectClause = regexp.MustCompile(`(?is)\bSELECT\b(.*?)\bFROM\b`)

// FieldNames extracts output column names from the query's SELECT clause.
// Each comma-separated entry contributes the substring after its last '.',
// so "QUATTRO_CR.MOLECULE.MOL_CTFILE" yields "MOL_CTFILE". The result is
// deterministic for a fixed query string.
func FieldNames(query string) ([]string, error) {
	// Collapse newlines so the clause regexp sees one line.
	flat := strings.ReplaceAll(query, "\n", " ")

	m := selectClause.FindStringSubmatch(flat)
	if m == nil {
		return nil, fmt.Errorf("sqltext: no SELECT ... FROM clause in query")
	}

	parts := strings.Split(m[1], ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		expr := strings.TrimSpace(p)
		if expr == "" {
			return nil, fmt.Errorf("sqltext: empty select-list entry in query")
		}
		name := expr[strings.LastIndex(expr, ".")+1:]
		if name == "" || strings.ContainsAny(name, " \t()") {
			return nil, fmt.Errorf("sqltext: select-list entry %q outside supported grammar", expr)
		}
		names = append(names, name)
	}
	return names, nil
}
