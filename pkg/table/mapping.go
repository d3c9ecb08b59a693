package table

import (
	"errors"
	"fmt"

	"pgtable/pkg/ddl"
)

// FieldMapping binds one column to one field of T.
type FieldMapping[T any] struct {
	Column ddl.Column
	get    func(*T) any
	addr   func(*T) any
}

// Col binds col to the field ptr points at. ptr must return the address of
// a field of its argument.
func Col[T, V any](col ddl.Column, ptr func(*T) *V) FieldMapping[T] {
	return FieldMapping[T]{
		Column: col,
		get:    func(t *T) any { return *ptr(t) },
		addr:   func(t *T) any { return ptr(t) },
	}
}

// Mapping derives a table descriptor, value extraction and row decoding for
// T from an ordered list of field mappings. Record types delegate their
// Table and RowDecoder methods to a package-level Mapping:
//
//	var figures = table.Map("figures",
//	    table.Col(ddl.Build("name", ddl.Varchar).Index().Finish(), func(f *Figure) *string { return &f.Name }),
//	    table.Col(ddl.NewColumn("polygon", ddl.ArrayType(point2d)), func(f *Figure) *[]Point { return &f.Polygon }),
//	)
//
//	func (Figure) Descriptor() *table.Descriptor   { return figures.Descriptor() }
//	func (f Figure) Values() []any                 { return figures.Values(&f) }
//	func (f *Figure) DecodeRow(r table.Row) error  { return figures.Decode(r, f) }
type Mapping[T any] struct {
	desc   *Descriptor
	fields []FieldMapping[T]
}

// Map builds a Mapping. The descriptor's columns follow the order of fields.
func Map[T any](name string, fields ...FieldMapping[T]) *Mapping[T] {
	cols := make([]ddl.Column, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return &Mapping[T]{
		desc:   &Descriptor{Name: name, Columns: cols},
		fields: append([]FieldMapping[T](nil), fields...),
	}
}

// WithConstraints adds table-level constraints to the descriptor. It is meant
// for package initialization and returns m.
func (m *Mapping[T]) WithConstraints(cs ...ddl.Constraint) *Mapping[T] {
	m.desc.Constraints = append(m.desc.Constraints, cs...)
	return m
}

func (m *Mapping[T]) Descriptor() *Descriptor { return m.desc }

// Values returns the mapped fields of t in column order.
func (m *Mapping[T]) Values(t *T) []any {
	out := make([]any, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.get(t)
	}
	return out
}

// Decode scans every mapped column of row into t. It stops at the first
// column that fails.
func (m *Mapping[T]) Decode(row Row, t *T) error {
	for _, f := range m.fields {
		if err := row.Scan(f.Column.Name, f.addr(t)); err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				return err
			}
			return MismatchedField(f.Column.Name, err)
		}
	}
	return nil
}

// MustValidate panics if the mapping's descriptor is invalid.
func (m *Mapping[T]) MustValidate() *Mapping[T] {
	if err := m.desc.Validate(); err != nil {
		panic(fmt.Sprintf("table.Map: %v", err))
	}
	return m
}
