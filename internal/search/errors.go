package search

import (
	"errors"
	"fmt"
)

// Sentinel causes for per-identifier failures. They surface wrapped in a
// *QueryError carrying the offending identifier.
var (
	// ErrNoRows means the query returned no record for an identifier.
	ErrNoRows = errors.New("no rows for identifier")

	// ErrMultipleRows means more than one record came back while the batch
	// runs under RequireExactlyOne.
	ErrMultipleRows = errors.New("multiple rows for identifier")

	// ErrMalformedRecord means the retained record cannot be split into a
	// structural payload and its remaining fields.
	ErrMalformedRecord = errors.New("record too short to split into fields and payload")
)

// QueryError reports a failure while processing one identifier. The batch
// policy is fail-fast: the first QueryError aborts the remaining identifiers
// and no table is returned.
type QueryError struct {
	ID  any
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("search: identifier %v: %v", e.ID, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// SchemaMismatchError reports that the number of column names derived from
// the query text does not match the arity of the returned records. It is
// raised instead of silently misaligning data.
type SchemaMismatchError struct {
	Names []string
	Arity int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("search: derived %d column names %v but records have %d fields",
		len(e.Names), e.Names, e.Arity)
}
