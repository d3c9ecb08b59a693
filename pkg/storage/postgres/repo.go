// Package postgres implements storage.Executor on a pgx v5 connection pool.
//
// Composite and enum types are not known to pgx until they are loaded from
// the server catalog. RegisterTypes records their names; every connection
// taken from the pool loads whatever it is missing before running a
// statement, so arguments and results of those types encode and decode
// through the connection's type map.
package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgtable/pkg/ddl"
	"pgtable/pkg/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN      string // connection string for pgxpool
	MaxConns int    // pool size; zero keeps the pgxpool default
}

// Repository is a Postgres-backed storage.Executor.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config

	mu    sync.RWMutex
	types []string // user-defined types, dependencies first
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

func (r *Repository) Dialect() ddl.Dialect { return ddl.Postgres }

// Exec runs sql and returns the affected row count. Server errors are
// returned as-is (*pgconn.PgError).
func (r *Repository) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query runs sql. The connection stays checked out until the rows are closed.
func (r *Repository) Query(ctx context.Context, sql string, args ...any) (storage.Rows, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &pgRows{rows: rows, release: conn.Release}, nil
}

const typeExistsSQL = `SELECT EXISTS (
	SELECT 1
	FROM pg_catalog.pg_type t
	JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
	WHERE t.typname = $1 AND ($2::text = '' OR n.nspname = $2::text))`

// TypeExists looks name up in pg_catalog.pg_type. A schema-qualified name
// only matches in that schema.
func (r *Repository) TypeExists(ctx context.Context, name string) (bool, error) {
	schema, base := splitTypeName(name)
	var ok bool
	if err := r.pool.QueryRow(ctx, typeExistsSQL, base, schema).Scan(&ok); err != nil {
		return false, fmt.Errorf("postgres: type exists %s: %w", name, err)
	}
	return ok, nil
}

// RegisterTypes remembers names and loads them into one pooled connection,
// which fails fast when a type does not exist. Names that fail to load are
// forgotten again so later statements are not blocked by them.
func (r *Repository) RegisterTypes(ctx context.Context, names ...string) error {
	r.mu.Lock()
	var added []string
	for _, n := range names {
		if !slices.Contains(r.types, n) && !slices.Contains(added, n) {
			added = append(added, n)
		}
	}
	r.types = append(r.types[:len(r.types):len(r.types)], added...)
	r.mu.Unlock()
	if len(added) == 0 {
		return nil
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		r.mu.Lock()
		r.types = slices.DeleteFunc(slices.Clone(r.types), func(n string) bool {
			return slices.Contains(added, n)
		})
		r.mu.Unlock()
		return err
	}
	conn.Release()
	return nil
}

func (r *Repository) Close() { r.pool.Close() }

// acquire checks out a connection with every registered type loaded.
func (r *Repository) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: acquire: %w", err)
	}
	r.mu.RLock()
	names := r.types
	r.mu.RUnlock()
	if err := loadTypes(ctx, conn.Conn(), names); err != nil {
		conn.Release()
		return nil, err
	}
	return conn, nil
}

// loadTypes registers each named type and its array type on conn unless the
// connection's type map already has it.
func loadTypes(ctx context.Context, conn *pgx.Conn, names []string) error {
	tm := conn.TypeMap()
	for _, name := range names {
		for _, n := range []string{name, arrayTypeName(name)} {
			if _, ok := tm.TypeForName(n); ok {
				continue
			}
			t, err := conn.LoadType(ctx, n)
			if err != nil {
				return fmt.Errorf("postgres: load type %s: %w", n, err)
			}
			tm.RegisterType(t)
		}
	}
	return nil
}

// splitTypeName returns the lower-cased schema (or "") and type name, the way
// the server stores unquoted identifiers.
func splitTypeName(name string) (schema, base string) {
	name = strings.ToLower(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// arrayTypeName is the catalog name of name's array type.
func arrayTypeName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i+1] + "_" + name[i+1:]
	}
	return "_" + name
}
