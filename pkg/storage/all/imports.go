// Package all wires the built-in executors into the storage factory.
//
// It exists purely for side effects: importing it runs the init functions of
// each backend, which register their factories with the storage package. After
// a blank import the following kinds are available to storage.New:
//
//   - "postgres" (pgtable/pkg/storage/postgres)
//   - "sqlite"   (pgtable/pkg/storage/sqlite)
//
// Typical usage:
//
//	import (
//	    _ "pgtable/pkg/storage/all" // enable all built-in backends
//
//	    "pgtable/pkg/storage"
//	)
//
//	func run(ctx context.Context, kind, dsn string) error {
//	    ex, err := storage.New(ctx, storage.Config{Kind: kind, DSN: dsn})
//	    if err != nil {
//	        return err
//	    }
//	    defer ex.Close()
//	    return storage.CreateTable[Figure](ctx, ex)
//	}
//
// A binary that needs only one backend can import that package directly
// instead.
package all

import (
	_ "pgtable/pkg/storage/postgres"
	_ "pgtable/pkg/storage/sqlite"
)
