package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"chemsearch/internal/molparse"
	"chemsearch/internal/search"
	"chemsearch/internal/table"
)

// parseFailedCell is written to CSV output where a connection table could not
// be parsed into a molecule.
const parseFailedCell = "<parse failed>"

// writeCSV renders the result table as CSV with a header row. Molecule cells
// are summarized as "formula atoms=N bonds=M"; nil molecules (parse failures)
// render as a sentinel so failures stay visible in spreadsheet tools.
func writeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = renderCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// renderCell formats one table cell for CSV output.
func renderCell(v any) string {
	switch m := v.(type) {
	case *molparse.Molecule:
		if m == nil {
			return parseFailedCell
		}
		return m.String()
	default:
		return search.CoerceText(v)
	}
}

// writeJSON renders the result table as a JSON array of objects, one per row,
// keyed by column name. Molecule cells carry the full graph; parse failures
// render as null.
func writeJSON(w io.Writer, t *table.Table) error {
	cols := t.Columns()
	out := make([]map[string]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		obj := make(map[string]any, len(cols))
		for j, name := range cols {
			obj[name] = jsonCell(row[j])
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonCell normalizes one table cell for JSON encoding. Typed nil molecules
// must become untyped nils so they encode as null.
func jsonCell(v any) any {
	if m, ok := v.(*molparse.Molecule); ok {
		if m == nil {
			return nil
		}
		return m
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
