package table

import (
	"fmt"

	"pgtable/pkg/ddl"
)

// CreateTypesSQL returns the CREATE TYPE statements for the user-defined types
// the table's columns use, dependencies first.
func (d *Descriptor) CreateTypesSQL(dialect ddl.Dialect) ([]ddl.TypeDef, error) {
	return ddl.BuildCreateTypesSQL(dialect, d.Columns)
}

// CreateTableSQL returns the CREATE TABLE statement for the table.
func (d *Descriptor) CreateTableSQL(dialect ddl.Dialect) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	return ddl.BuildCreateTableSQL(dialect, d.Name, d.Columns, d.Constraints)
}

// CreateIndicesSQL returns one CREATE INDEX statement per indexed column.
func (d *Descriptor) CreateIndicesSQL(dialect ddl.Dialect) ([]ddl.IndexDef, error) {
	return ddl.BuildCreateIndicesSQL(dialect, d.Name, d.Columns)
}

// SelectSQL returns SELECT * for the table with an optional WHERE clause.
func (d *Descriptor) SelectSQL(where string) (string, error) {
	return ddl.BuildSelectSQL(d.Name, where)
}

// TypeNames lists the user-defined types the table depends on, dependencies
// first.
func (d *Descriptor) TypeNames() ([]string, error) {
	types, err := ddl.DiscoverTypes(d.Columns)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.SQLName()
	}
	return names, nil
}

// InsertSQL returns a parameterized INSERT for recs and the arguments to bind,
// row after row in column order. All records must share one descriptor.
func InsertSQL(dialect ddl.Dialect, recs ...Table) (string, []any, error) {
	if len(recs) == 0 {
		return "", nil, fmt.Errorf("table: insert: no records")
	}
	d := recs[0].Descriptor()
	args := make([]any, 0, len(recs)*len(d.Columns))
	for i, rec := range recs {
		if rd := rec.Descriptor(); rd != d {
			return "", nil, fmt.Errorf("table: insert: record %d is for table %s, want %s", i, rd.Name, d.Name)
		}
		vals, err := ValuesOf(rec)
		if err != nil {
			return "", nil, err
		}
		args = append(args, vals...)
	}
	sql, err := ddl.BuildInsertSQL(dialect, d.Name, d.ColumnNames(), len(recs))
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}
