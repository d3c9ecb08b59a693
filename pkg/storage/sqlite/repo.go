// Package sqlite implements storage.Executor on database/sql with the pure-Go
// modernc.org/sqlite driver. SQLite has no composite, enum or array types, so
// only tables of scalar columns can be created here; it is mostly useful for
// tests and local tooling.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pgtable/pkg/ddl"
	"pgtable/pkg/storage"
	"pgtable/pkg/table"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:figures.db?_pragma=busy_timeout(5000)"
	//   ":memory:"
	DSN string

	// MaxConns caps open connections. In-memory databases always use one,
	// since each connection would otherwise see its own empty database.
	MaxConns int
}

// Repository is a SQLite-backed storage.Executor.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite database and returns a Repository plus a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	switch {
	case isMemory(cfg.DSN):
		db.SetMaxOpenConns(1)
	case cfg.MaxConns > 0:
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// REFERENCES clauses are only enforced with foreign keys on.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func (r *Repository) Dialect() ddl.Dialect { return ddl.SQLite }

// Exec runs query and returns the affected row count. Driver errors are returned
// as-is.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n, nil
}

func (r *Repository) Query(ctx context.Context, query string, args ...any) (storage.Rows, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	return &sqlRows{rows: rows, columns: cols}, nil
}

// TypeExists always reports false: SQLite has no user-defined types.
func (r *Repository) TypeExists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

// RegisterTypes fails for any name; see TypeExists.
func (r *Repository) RegisterTypes(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("sqlite: %w: %s", ddl.ErrUnsupportedType, strings.Join(names, ", "))
}

func (r *Repository) Close() { r.db.Close() }

// sqlRows scans each row into driver values and exposes them as a
// table.ValueRow.
type sqlRows struct {
	rows    *sql.Rows
	columns []string
	cur     *table.ValueRow
	err     error
}

func (r *sqlRows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	vals := make([]any, len(r.columns))
	ptrs := make([]any, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = fmt.Errorf("sqlite: scan: %w", err)
		return false
	}
	r.cur = table.NewValueRow(r.columns, vals)
	return true
}

func (r *sqlRows) Row() table.Row { return r.cur }

func (r *sqlRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *sqlRows) Close() { r.rows.Close() }
