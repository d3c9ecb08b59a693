// Package storage runs the statements derived from table descriptors against
// a database.
//
// Backends implement Executor and register a constructor under a kind name
// ("postgres", "sqlite") from their init functions; callers open one with New
// and stay backend-agnostic:
//
//	import _ "pgtable/pkg/storage/all"
//
//	ex, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
//	if err != nil {
//	    return err
//	}
//	defer ex.Close()
//
//	if err := storage.CreateTable[Figure](ctx, ex); err != nil {
//	    return err
//	}
//	if _, err := storage.InsertRow(ctx, ex, trapezoid); err != nil {
//	    return err
//	}
//	figs, err := storage.SelectAll[Figure](ctx, ex)
package storage

import (
	"context"

	"pgtable/pkg/ddl"
	"pgtable/pkg/table"
)

// Executor is a database connection (or pool) that can run generated SQL.
// Implementations must be safe for concurrent use when the underlying client
// is.
type Executor interface {
	// Dialect selects placeholder style and supported column types.
	Dialect() ddl.Dialect

	// Exec runs one statement with positional args and returns the number of
	// affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query runs one statement and returns its rows. The caller must Close
	// them.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// TypeExists reports whether a user-defined type with the given name is
	// already defined.
	TypeExists(ctx context.Context, name string) (bool, error)

	// RegisterTypes makes the named user-defined types usable as query
	// arguments and result values. Names must be given dependencies first.
	RegisterTypes(ctx context.Context, names ...string) error

	// Close releases the underlying connections.
	Close()
}

// Rows iterates over a query result.
type Rows interface {
	Next() bool
	// Row returns the current row. It is valid until the next call to Next.
	Row() table.Row
	Err() error
	Close()
}
