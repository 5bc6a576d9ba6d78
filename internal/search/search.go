// Package search implements compound search over a chemical-registration
// database: one parameterized query per identifier, first-row normalization,
// and assembly of the results into a column-named table in which the
// connection-table column is replaced by a parsed molecular graph and its
// per-row parsing diagnostics.
//
// Processing is strictly sequential and order preserving: results appear in
// identifier input order, and the graph and diagnostics columns are aligned
// with their source rows positionally. The batch either completes fully or
// fails with an error; a partially filled table is never returned.
package search

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chemsearch/internal/metrics"
	"chemsearch/internal/registry"
	"chemsearch/internal/sqltext"
	"chemsearch/internal/table"
)

// RowPolicy decides which record represents an identifier when the query
// returns something other than exactly one row.
type RowPolicy int

const (
	// TakeFirst keeps the first returned row and drops the rest. This is
	// the default and is lossy by design when the query is one-to-many;
	// zero rows is still an error.
	TakeFirst RowPolicy = iota

	// RequireExactlyOne fails the batch unless exactly one row comes back.
	RequireExactlyOne
)

func (p RowPolicy) String() string {
	switch p {
	case RequireExactlyOne:
		return "exactly-one"
	default:
		return "take-first"
	}
}

// ParseRowPolicy maps the CLI/config spelling to a RowPolicy.
func ParseRowPolicy(s string) (RowPolicy, error) {
	switch s {
	case "", "take-first":
		return TakeFirst, nil
	case "exactly-one":
		return RequireExactlyOne, nil
	default:
		return TakeFirst, fmt.Errorf("search: unknown row policy %q (want take-first or exactly-one)", s)
	}
}

// Default column names. StructureColumn matches the registration schema's
// connection-table field; ROMol and Warnings are the derived columns that
// replace it.
const (
	DefaultStructureColumn = "MOL_CTFILE"
	MolColumn              = "ROMol"
	WarningsColumn         = "Warnings"
)

// Options tune one Searcher. The zero value is usable.
type Options struct {
	// Policy selects the row-normalization policy; default TakeFirst.
	Policy RowPolicy

	// StructureColumn names the connection-table column to replace with
	// graph and diagnostics columns; default DefaultStructureColumn. A
	// batch whose query does not select this column returns the raw table
	// unchanged.
	StructureColumn string

	// Progress, when non-nil, is called after each identifier completes
	// with (done, total). Reporting only; it must not block for long.
	Progress func(done, total int)

	// Logger receives batch-level progress logs; default no-op.
	Logger *zap.Logger

	// Job labels metrics emitted for this searcher; default "chemsearch".
	Job string
}

// Searcher runs identifier batches against an open registry connection. It
// does not own the connection's lifecycle beyond the queries it issues; the
// caller acquires the connection before the batch and releases it after,
// on every exit path.
type Searcher struct {
	conn registry.Conn
	opts Options
	log  *zap.Logger
}

// New builds a Searcher over an open connection.
func New(conn registry.Conn, opts Options) *Searcher {
	if opts.StructureColumn == "" {
		opts.StructureColumn = DefaultStructureColumn
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Job == "" {
		opts.Job = "chemsearch"
	}
	return &Searcher{conn: conn, opts: opts, log: opts.Logger}
}

// Run opens the registry connection, executes one batch, and releases the
// connection on every exit path. A connection failure surfaces as a
// *registry.ConnectError before any query runs.
func Run(ctx context.Context, rcfg registry.Config, opts Options, query string, ids []any) (*table.Table, error) {
	conn, err := registry.Open(ctx, rcfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return New(conn, opts).Search(ctx, query, ids)
}

// Search executes the query template once per identifier, in order, and
// returns the assembled result table. Column names are derived textually
// from the template's SELECT clause before the first query runs, so grammar
// problems fail early.
//
// The batch is fail-fast: the first per-identifier failure aborts the rest
// and is returned as a *QueryError. Cancellation is honored between
// identifiers.
func (s *Searcher) Search(ctx context.Context, query string, ids []any) (*table.Table, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("search: identifier list must not be empty")
	}

	names, err := sqltext.FieldNames(query)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	s.log.Info("batch started",
		zap.String("run_id", runID),
		zap.Int("identifiers", len(ids)),
		zap.String("policy", s.opts.Policy.String()))

	records := make([][]any, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := s.conn.Query(ctx, query, id)
		if err != nil {
			metrics.RecordBatch(s.opts.Job, err, time.Since(start))
			return nil, &QueryError{ID: id, Err: err}
		}
		rec, err := selectRecord(rows, s.opts.Policy)
		if err != nil {
			metrics.RecordBatch(s.opts.Job, err, time.Since(start))
			return nil, &QueryError{ID: id, Err: err}
		}
		records = append(records, rec)

		metrics.RecordIdentifiers(s.opts.Job, 1)
		if s.opts.Progress != nil {
			s.opts.Progress(i+1, len(ids))
		}
	}

	tbl, err := s.assemble(names, records)
	metrics.RecordBatch(s.opts.Job, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.log.Info("batch complete",
		zap.String("run_id", runID),
		zap.Int("rows", tbl.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return tbl, nil
}

// selectRecord applies the row policy and coerces the final field (the
// structural payload slot) to text. Driver-native large-object values
// survive only as long as the connection, so coercion happens here, inside
// the batch, not at assembly time.
func selectRecord(rows [][]any, policy RowPolicy) ([]any, error) {
	switch {
	case len(rows) == 0:
		return nil, ErrNoRows
	case len(rows) > 1 && policy == RequireExactlyOne:
		return nil, fmt.Errorf("%w: got %d", ErrMultipleRows, len(rows))
	}

	rec := rows[0]
	if len(rec) < 2 {
		return nil, fmt.Errorf("%w: %d fields", ErrMalformedRecord, len(rec))
	}
	out := slices.Clone(rec)
	out[len(out)-1] = CoerceText(out[len(out)-1])
	return out, nil
}

// CoerceText renders a driver value as plain text. Nil becomes the empty
// string.
func CoerceText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// assemble builds the result table and, when the structural column is
// present, swaps it for the parsed-graph and diagnostics columns. A fresh
// CaptureParser is created per batch so diagnostic capture never crosses
// batch boundaries.
func (s *Searcher) assemble(names []string, records [][]any) (*table.Table, error) {
	for _, rec := range records {
		if len(rec) != len(names) {
			return nil, &SchemaMismatchError{Names: names, Arity: len(rec)}
		}
	}

	tbl, err := table.New(names)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for _, rec := range records {
		if err := tbl.AppendRow(rec); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
	}

	vals, ok := tbl.Column(s.opts.StructureColumn)
	if !ok {
		return tbl, nil
	}

	texts := make([]string, len(vals))
	for i, v := range vals {
		texts[i] = CoerceText(v)
	}
	mols, diags := NewCaptureParser().ParseAll(texts)

	molVals := make([]any, len(mols))
	diagVals := make([]any, len(diags))
	var failed, warned int64
	for i := range mols {
		molVals[i] = mols[i]
		diagVals[i] = diags[i]
		switch {
		case mols[i] == nil:
			failed++
		case diags[i] != "":
			warned++
		}
	}
	metrics.RecordParse(s.opts.Job, "failed", failed)
	metrics.RecordParse(s.opts.Job, "warned", warned)
	metrics.RecordParse(s.opts.Job, "parsed", int64(len(mols))-failed)

	if err := tbl.ReplaceColumn(s.opts.StructureColumn,
		table.NamedColumn{Name: MolColumn, Values: molVals},
		table.NamedColumn{Name: WarningsColumn, Values: diagVals},
	); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return tbl, nil
}
