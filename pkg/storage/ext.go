package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pgtable/internal/metrics"
	"pgtable/pkg/ddl"
	"pgtable/pkg/table"
)

// CreateTable creates T's user-defined types, its table and its indices, in
// that order. Every statement is idempotent, so running it against an
// existing schema is a no-op. Statements run one by one without a
// transaction: when a step fails, earlier steps stay applied and the error
// names the failing step.
func CreateTable[T any, PT table.Pointer[T]](ctx context.Context, ex Executor) error {
	return CreateTableFor(ctx, ex, table.DescriptorOf[T, PT]())
}

// CreateTableFor is CreateTable for an explicit descriptor.
func CreateTableFor(ctx context.Context, ex Executor, d *table.Descriptor) (err error) {
	if d == nil {
		return errors.New("storage: nil descriptor")
	}
	start := time.Now()
	defer func() { metrics.RecordOp(d.Name, "create_table", err, time.Since(start)) }()

	dialect := ex.Dialect()
	createSQL, err := d.CreateTableSQL(dialect)
	if err != nil {
		return err
	}
	indices, err := d.CreateIndicesSQL(dialect)
	if err != nil {
		return err
	}

	log().InfoContext(ctx, "creating table", "table", d.Name, "dialect", dialect.String())
	if err := createTypes(ctx, ex, d); err != nil {
		return err
	}

	log().DebugContext(ctx, "exec", "sql", createSQL)
	if _, err := ex.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", d.Name, err)
	}

	return createIndices(ctx, ex, d.Name, indices)
}

// CreateTypes creates the user-defined types T's columns use that do not
// exist yet, dependencies first, and registers them with ex.
func CreateTypes[T any, PT table.Pointer[T]](ctx context.Context, ex Executor) (err error) {
	d := table.DescriptorOf[T, PT]()
	start := time.Now()
	defer func() { metrics.RecordOp(d.Name, "create_types", err, time.Since(start)) }()

	return createTypes(ctx, ex, d)
}

// CreateIndices creates one index per indexed column of T.
func CreateIndices[T any, PT table.Pointer[T]](ctx context.Context, ex Executor) (err error) {
	d := table.DescriptorOf[T, PT]()
	start := time.Now()
	defer func() { metrics.RecordOp(d.Name, "create_indices", err, time.Since(start)) }()

	indices, err := d.CreateIndicesSQL(ex.Dialect())
	if err != nil {
		return err
	}
	return createIndices(ctx, ex, d.Name, indices)
}

func createTypes(ctx context.Context, ex Executor, d *table.Descriptor) error {
	defs, err := d.CreateTypesSQL(ex.Dialect())
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		exists, err := ex.TypeExists(ctx, def.Name)
		if err != nil {
			return fmt.Errorf("check type %s: %w", def.Name, err)
		}
		if exists {
			log().DebugContext(ctx, "type exists", "type", def.Name)
			continue
		}
		log().DebugContext(ctx, "exec", "sql", def.SQL)
		if _, err := ex.Exec(ctx, def.SQL); err != nil {
			return fmt.Errorf("create type %s: %w", def.Name, err)
		}
	}
	log().InfoContext(ctx, "types created", "table", d.Name, "types", names)

	if err := ex.RegisterTypes(ctx, names...); err != nil {
		return fmt.Errorf("register types: %w", err)
	}
	return nil
}

func createIndices(ctx context.Context, ex Executor, tableName string, indices []ddl.IndexDef) error {
	for _, idx := range indices {
		log().DebugContext(ctx, "exec", "sql", idx.SQL)
		if _, err := ex.Exec(ctx, idx.SQL); err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	if len(indices) > 0 {
		log().InfoContext(ctx, "indices created", "table", tableName, "count", len(indices))
	}
	return nil
}

// registerTypes makes the types d depends on usable on ex.
func registerTypes(ctx context.Context, ex Executor, d *table.Descriptor) error {
	names, err := d.TypeNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	if err := ex.RegisterTypes(ctx, names...); err != nil {
		return fmt.Errorf("register types: %w", err)
	}
	return nil
}

// registerForInsert registers d's types with ex ahead of an INSERT. A failure
// is logged, not returned: the INSERT then reports the server's own error,
// such as a missing table or type.
func registerForInsert(ctx context.Context, ex Executor, d *table.Descriptor) {
	if err := registerTypes(ctx, ex, d); err != nil {
		log().WarnContext(ctx, "type registration failed before insert", "table", d.Name, "err", err)
	}
}

// InsertRow inserts rec into its table and returns the number of affected
// rows. Values are bound as parameters in column order. An error from ex is
// returned unchanged, including when rec's types could not be registered
// because the schema does not exist yet.
func InsertRow(ctx context.Context, ex Executor, rec table.Table) (n int64, err error) {
	d := rec.Descriptor()
	start := time.Now()
	defer func() {
		metrics.RecordOp(d.Name, "insert_row", err, time.Since(start))
		metrics.RecordRows(d.Name, "insert", n)
	}()

	sql, args, err := table.InsertSQL(ex.Dialect(), rec)
	if err != nil {
		return 0, err
	}
	registerForInsert(ctx, ex, d)
	log().DebugContext(ctx, "exec", "sql", sql, "args", len(args))
	return ex.Exec(ctx, sql, args...)
}

// InsertRows inserts recs with multi-row INSERTs of at most batchSize rows
// each; a batchSize <= 0 packs as many rows per statement as the dialect's
// parameter limit allows. Batches run in order without a transaction, so on
// failure n counts the rows of the batches already applied and the executor's
// error is returned unchanged. It is a no-op for an empty slice.
func InsertRows[T table.Table](ctx context.Context, ex Executor, recs []T, batchSize int) (n int64, err error) {
	if len(recs) == 0 {
		return 0, nil
	}
	d := recs[0].Descriptor()
	start := time.Now()
	defer func() {
		metrics.RecordOp(d.Name, "insert_rows", err, time.Since(start))
		metrics.RecordRows(d.Name, "insert", n)
	}()

	dialect := ex.Dialect()
	if limit := max(dialect.MaxParams()/max(len(d.Columns), 1), 1); batchSize <= 0 || batchSize > limit {
		batchSize = limit
	}

	registerForInsert(ctx, ex, d)

	tabs := make([]table.Table, 0, batchSize)
	for lo := 0; lo < len(recs); lo += batchSize {
		hi := min(lo+batchSize, len(recs))
		tabs = tabs[:0]
		for _, r := range recs[lo:hi] {
			tabs = append(tabs, r)
		}
		sql, args, err := table.InsertSQL(dialect, tabs...)
		if err != nil {
			return n, err
		}
		log().DebugContext(ctx, "exec", "sql", sql, "rows", len(tabs), "args", len(args))
		got, err := ex.Exec(ctx, sql, args...)
		n += got
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// SelectAll returns every row of T's table. An empty table yields an empty,
// non-nil slice. The first row that fails to decode aborts the read; no
// partial result is returned.
func SelectAll[T any, PT table.Record[T]](ctx context.Context, ex Executor) ([]T, error) {
	return selectRows[T, PT](ctx, ex, "select_all", "")
}

// Select returns the rows of T's table matching where, a raw SQL condition
// whose values are bound from args. An empty where selects everything.
func Select[T any, PT table.Record[T]](ctx context.Context, ex Executor, where string, args ...any) ([]T, error) {
	return selectRows[T, PT](ctx, ex, "select", where, args...)
}

func selectRows[T any, PT table.Record[T]](ctx context.Context, ex Executor, op, where string, args ...any) (out []T, err error) {
	d := PT(new(T)).Descriptor()
	start := time.Now()
	defer func() {
		metrics.RecordOp(d.Name, op, err, time.Since(start))
		metrics.RecordRows(d.Name, "select", int64(len(out)))
	}()

	sql, err := d.SelectSQL(where)
	if err != nil {
		return nil, err
	}
	if err := registerTypes(ctx, ex, d); err != nil {
		return nil, err
	}

	log().DebugContext(ctx, "query", "sql", sql, "args", len(args))
	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", d.Name, err)
	}
	defer rows.Close()

	recs := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := PT(&rec).DecodeRow(rows.Row()); err != nil {
			var fe *table.FieldError
			if errors.As(err, &fe) && fe.Table == "" {
				fe.Table = d.Name
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %s: %w", d.Name, err)
	}
	return recs, nil
}
