package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"chemsearch/internal/molparse"
	"chemsearch/internal/table"
)

// resultTable builds a two-row result: one parsed molecule and one parse
// failure with a diagnostic.
func resultTable(t *testing.T) *table.Table {
	t.Helper()

	tbl, err := table.New([]string{"REGISTRATION_ID", "ROMol", "Warnings"})
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}

	mol := &molparse.Molecule{
		Name:  "water",
		Atoms: []molparse.Atom{{Symbol: "O"}, {Symbol: "H"}, {Symbol: "H"}},
		Bonds: []molparse.Bond{{From: 0, To: 1, Order: 1}, {From: 0, To: 2, Order: 1}},
	}
	if err := tbl.AppendRow([]any{"CHEM-001", mol, ""}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	var missing *molparse.Molecule
	if err := tbl.AppendRow([]any{"CHEM-002", missing, "atom count unreadable"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	return tbl
}

/*
TestWriteCSV verifies the header row, the molecule summary cell, and the
parse-failure sentinel.
*/
func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeCSV(&buf, resultTable(t)); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "REGISTRATION_ID,ROMol,Warnings" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "H2O atoms=3 bonds=2") {
		t.Fatalf("molecule row = %q, want formula summary", lines[1])
	}
	if !strings.Contains(lines[2], parseFailedCell) {
		t.Fatalf("failure row = %q, want sentinel %q", lines[2], parseFailedCell)
	}
}

/*
TestWriteJSON verifies that molecule cells carry the full graph and parse
failures encode as null.
*/
func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeJSON(&buf, resultTable(t)); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	mol, ok := rows[0]["ROMol"].(map[string]any)
	if !ok {
		t.Fatalf("ROMol cell = %#v, want object", rows[0]["ROMol"])
	}
	atoms, ok := mol["Atoms"].([]any)
	if !ok || len(atoms) != 3 {
		t.Fatalf("Atoms = %#v, want 3 entries", mol["Atoms"])
	}

	if rows[1]["ROMol"] != nil {
		t.Fatalf("failed row ROMol = %#v, want null", rows[1]["ROMol"])
	}
	if w, _ := rows[1]["Warnings"].(string); !strings.Contains(w, "unreadable") {
		t.Fatalf("Warnings = %q, want diagnostic text", w)
	}
}

/*
TestRenderCell covers scalar coercion alongside molecule handling.
*/
func TestRenderCell(t *testing.T) {
	t.Parallel()

	if got := renderCell([]byte("raw")); got != "raw" {
		t.Fatalf("renderCell([]byte) = %q", got)
	}
	if got := renderCell(nil); got != "" {
		t.Fatalf("renderCell(nil) = %q, want empty", got)
	}
	if got := renderCell(42); got != "42" {
		t.Fatalf("renderCell(42) = %q", got)
	}
}
