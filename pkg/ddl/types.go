// Package ddl models PostgreSQL column types, columns and table constraints,
// and renders the statements that create them.
//
// A column type is one of a closed set of variants:
//
//   - Scalar: a built-in type such as smallint or varchar, rendered verbatim.
//   - Composite: a user-defined record type created with CREATE TYPE ... AS (...).
//   - Enum: a user-defined enumeration created with CREATE TYPE ... AS ENUM (...).
//   - Array: an array of any other column type, rendered with a trailing [].
//
// Composite and enum types must exist before a table or another composite
// references them; DiscoverTypes returns them in that order.
//
// Everything in this package is pure: the same inputs always produce
// byte-identical SQL.
package ddl

import "fmt"

// ColumnType is the type of a table column or of a composite type field.
// The set of implementations is closed: Scalar, Composite, Enum and Array.
type ColumnType interface {
	// SQLName is the type as written in a column or field definition.
	SQLName() string

	columnType()
}

// Scalar is a built-in database type. Name is emitted as-is.
type Scalar struct {
	Name string
}

func (s Scalar) SQLName() string { return s.Name }
func (Scalar) columnType()        {}

// Built-in scalars, named the way PostgreSQL spells them.
var (
	Bool        = Scalar{"boolean"}
	Int2        = Scalar{"smallint"}
	Int4        = Scalar{"integer"}
	Int8        = Scalar{"bigint"}
	Float4      = Scalar{"real"}
	Float8      = Scalar{"double precision"}
	Numeric     = Scalar{"numeric"}
	Text        = Scalar{"text"}
	Varchar     = Scalar{"varchar"}
	Char        = Scalar{"char"}
	UUID        = Scalar{"uuid"}
	Date        = Scalar{"date"}
	Timestamp   = Scalar{"timestamp"}
	Timestamptz = Scalar{"timestamptz"}
	JSON        = Scalar{"json"}
	JSONB       = Scalar{"jsonb"}
	Bytea       = Scalar{"bytea"}

	// Serial types are only valid as column types; the column reads back
	// as the matching integer type.
	Serial2 = Scalar{"serial2"}
	Serial4 = Scalar{"serial4"}
	Serial8 = Scalar{"serial8"}
)

// VarcharN is varchar(n).
func VarcharN(n int) Scalar { return Scalar{fmt.Sprintf("varchar(%d)", n)} }

// CharN is char(n).
func CharN(n int) Scalar { return Scalar{fmt.Sprintf("char(%d)", n)} }

// Field is one named member of a composite type.
type Field struct {
	Name string
	Type ColumnType
}

// F is shorthand for Field{Name: name, Type: t}.
func F(name string, t ColumnType) Field { return Field{Name: name, Type: t} }

// Composite is a user-defined record type.
type Composite struct {
	Name   string
	Fields []Field
}

func (c Composite) SQLName() string { return c.Name }
func (Composite) columnType()        {}

// Enum is a user-defined enumeration type.
type Enum struct {
	Name   string
	Labels []string
}

func (e Enum) SQLName() string { return e.Name }
func (Enum) columnType()        {}

// Array is an array of Elem. Elem may itself be an array.
type Array struct {
	Elem ColumnType
}

func (a Array) SQLName() string { return a.Elem.SQLName() + "[]" }
func (Array) columnType()        {}

// StructType describes a composite type with the given ordered fields.
// Field names are not checked for collisions.
func StructType(name string, fields ...Field) Composite {
	return Composite{Name: name, Fields: append([]Field(nil), fields...)}
}

// ArrayType describes an array of elem.
func ArrayType(elem ColumnType) Array {
	return Array{Elem: elem}
}

// EnumType describes an enumeration with the given ordered labels.
func EnumType(name string, labels ...string) Enum {
	return Enum{Name: name, Labels: append([]string(nil), labels...)}
}

// BaseType unwraps arrays down to their innermost element type.
func BaseType(t ColumnType) ColumnType {
	for {
		a, ok := t.(Array)
		if !ok {
			return t
		}
		t = a.Elem
	}
}

// IsUserDefined reports whether t is, or is an array of, a composite or enum.
func IsUserDefined(t ColumnType) bool {
	switch BaseType(t).(type) {
	case Composite, Enum:
		return true
	default:
		return false
	}
}
