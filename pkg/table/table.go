// Package table defines what a record type must provide to be stored in and
// loaded from a database table, and derives the table's SQL from it.
//
// A record type implements Table to describe its table and expose its column
// values, and RowDecoder to rebuild itself from a result row:
//
//	type Figure struct {
//	    Name    string
//	    Polygon []Point
//	}
//
//	var figures = &table.Descriptor{
//	    Name: "figures",
//	    Columns: []ddl.Column{
//	        ddl.Build("name", ddl.Varchar).Index().Finish(),
//	        ddl.NewColumn("polygon", ddl.ArrayType(point2d)),
//	    },
//	}
//
//	func (Figure) Descriptor() *table.Descriptor { return figures }
//	func (f Figure) Values() []any               { return []any{f.Name, f.Polygon} }
//	func (f *Figure) DecodeRow(r table.Row) error {
//	    if err := r.Scan("name", &f.Name); err != nil {
//	        return err
//	    }
//	    return r.Scan("polygon", &f.Polygon)
//	}
//
// Mapping builds all three methods from one list of (column, field) pairs.
package table

import (
	"errors"
	"fmt"

	"pgtable/pkg/ddl"
)

// ErrArityMismatch is returned when a record yields a different number of
// values than its descriptor declares columns.
var ErrArityMismatch = errors.New("column/value count mismatch")

// Descriptor is the static description of a table. It is built once per
// record type and never mutated.
type Descriptor struct {
	Name        string
	Columns     []ddl.Column
	Constraints []ddl.Constraint
}

// Table is implemented by record types stored in a table. Descriptor must
// return the same value for every instance, including the zero value.
type Table interface {
	Descriptor() *Descriptor
	// Values returns one value per column, in Descriptor().Columns order.
	Values() []any
}

// RowDecoder is implemented by pointers to record types that can be rebuilt
// from a result row. DecodeRow should fail with a *FieldError when a column is
// missing or holds an incompatible value.
type RowDecoder interface {
	DecodeRow(row Row) error
}

// Pointer is satisfied by *T when T is a table-backed record type.
type Pointer[T any] interface {
	*T
	Table
}

// Record is a table-backed type whose pointer decodes rows.
type Record[T any] interface {
	*T
	Table
	RowDecoder
}

// DescriptorOf returns the descriptor of record type T without needing an
// instance.
func DescriptorOf[T any, PT Pointer[T]]() *Descriptor {
	return PT(new(T)).Descriptor()
}

// ColumnNames returns the column names in declaration order.
func (d *Descriptor) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the table name, every column and that column names are
// distinct.
func (d *Descriptor) Validate() error {
	if d == nil {
		return errors.New("table: nil descriptor")
	}
	if err := ddl.ValidQualifiedIdent(d.Name); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("table %s: %w", d.Name, err)
		}
		key := foldName(c.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("table %s: duplicate column %s", d.Name, c.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ValuesOf returns rec's values after checking them against its descriptor's
// column count.
func ValuesOf(rec Table) ([]any, error) {
	d := rec.Descriptor()
	vals := rec.Values()
	if len(vals) != len(d.Columns) {
		return nil, fmt.Errorf("table %s: %w: %d columns, %d values", d.Name, ErrArityMismatch, len(d.Columns), len(vals))
	}
	return vals, nil
}
