// Package store persists job listings and decision makers as rows of named
// tables. Backends mirror a spreadsheet: a table is a header plus ordered
// rows of string cells, and writes only ever append.
package store

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"
)

// ErrSheetNotFound is returned when a table has not been created.
var ErrSheetNotFound = eris.New("sheet not found")

// Table is the full content of one named table.
type Table struct {
	Header []string
	Rows   [][]string
}

// Store defines the persistence interface for the pipeline.
type Store interface {
	// EnsureSheet creates the table with the given header when it does not
	// exist. capacity is a row-count hint for backends that preallocate.
	// An existing table is left untouched.
	EnsureSheet(ctx context.Context, name string, columns []string, capacity int) error

	// ReadAll returns the header and every data row in append order.
	ReadAll(ctx context.Context, name string) (*Table, error)

	// Append adds rows after the existing ones, in order.
	Append(ctx context.Context, name string, rows [][]string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
