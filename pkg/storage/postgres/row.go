package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"pgtable/pkg/table"
)

// pgRows adapts pgx.Rows to storage.Rows and returns the connection to the
// pool on Close.
type pgRows struct {
	rows    pgx.Rows
	release func()
}

func (r *pgRows) Next() bool { return r.rows.Next() }

func (r *pgRows) Row() table.Row {
	return &pgRow{
		typeMap: r.rows.Conn().TypeMap(),
		fields:  r.rows.FieldDescriptions(),
		values:  r.rows.RawValues(),
	}
}

func (r *pgRows) Err() error { return r.rows.Err() }

func (r *pgRows) Close() {
	r.rows.Close()
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// pgRow decodes raw column values with the connection's type map, so
// registered composite, enum and array types scan into Go structs, strings
// and slices.
type pgRow struct {
	typeMap *pgtype.Map
	fields  []pgconn.FieldDescription
	values  [][]byte
}

func (r *pgRow) Columns() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

func (r *pgRow) Scan(column string, dest any) error {
	i := table.ColumnIndex(r.Columns(), column)
	if i < 0 || i >= len(r.values) {
		return table.MissingField(column)
	}
	fd := r.fields[i]
	if err := r.typeMap.Scan(fd.DataTypeOID, fd.Format, r.values[i], dest); err != nil {
		return table.MismatchedField(column, err)
	}
	return nil
}

// Describe renders err for logs, appending the server's DETAIL and HINT when
// err wraps a *pgconn.PgError.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return msg
	}
	if pgErr.Detail != "" {
		msg += ": " + pgErr.Detail
	}
	if pgErr.Hint != "" {
		msg += " (hint: " + pgErr.Hint + ")"
	}
	return msg
}
