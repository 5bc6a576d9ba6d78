// Package table implements the ordered, column-named result container used by
// the search pipeline. It is intentionally small: columns are identified by
// name, values are row-aligned by position, and construction fails loudly when
// a row's arity does not match the column set rather than misaligning data.
package table

import (
	"fmt"
	"slices"
)

// Table holds named columns and row-aligned values. Rows preserve insertion
// order; columns preserve the order in which they were declared.
type Table struct {
	cols []string
	rows [][]any
}

// New constructs an empty Table with the given column names. Column names are
// copied so the caller's slice may be reused.
func New(cols []string) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table: at least one column required")
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c == "" {
			return nil, fmt.Errorf("table: empty column name")
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	return &Table{cols: slices.Clone(cols)}, nil
}

// AppendRow adds one row. The row must have exactly one value per column.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("table: row arity %d != %d columns", len(row), len(t.cols))
	}
	t.rows = append(t.rows, slices.Clone(row))
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string { return slices.Clone(t.cols) }

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any { return t.rows[i] }

// Index returns the position of the named column, or -1 if absent.
func (t *Table) Index(name string) int {
	return slices.Index(t.cols, name)
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]any, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, true
}

// ReplaceColumn removes the named column and splices the replacement columns
// in at its position. Every replacement column must carry exactly one value
// per existing row; replacement names must not collide with surviving ones
// or with each other.
func (t *Table) ReplaceColumn(name string, repl ...NamedColumn) error {
	i := t.Index(name)
	if i < 0 {
		return fmt.Errorf("table: no column %q", name)
	}
	seen := make(map[string]struct{}, len(repl))
	for _, c := range repl {
		if len(c.Values) != len(t.rows) {
			return fmt.Errorf("table: column %q has %d values, want %d", c.Name, len(c.Values), len(t.rows))
		}
		if j := t.Index(c.Name); j >= 0 && j != i {
			return fmt.Errorf("table: column %q already exists", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("table: duplicate replacement column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	cols := make([]string, 0, len(t.cols)-1+len(repl))
	cols = append(cols, t.cols[:i]...)
	for _, c := range repl {
		cols = append(cols, c.Name)
	}
	cols = append(cols, t.cols[i+1:]...)

	for r, row := range t.rows {
		next := make([]any, 0, len(cols))
		next = append(next, row[:i]...)
		for _, c := range repl {
			next = append(next, c.Values[r])
		}
		next = append(next, row[i+1:]...)
		t.rows[r] = next
	}
	t.cols = cols
	return nil
}

// NamedColumn pairs a column name with its row-aligned values, used when
// splicing derived columns into a Table.
type NamedColumn struct {
	Name   string
	Values []any
}
