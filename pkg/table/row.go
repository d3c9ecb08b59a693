package table

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
)

var (
	// ErrFieldMissing means a row has no column with the requested name.
	ErrFieldMissing = errors.New("field missing")

	// ErrFieldMismatch means a column's value cannot be stored in the
	// destination.
	ErrFieldMismatch = errors.New("field type mismatch")
)

// Row is one result row. Values are extracted by column name.
type Row interface {
	// Columns lists the result column names in select order.
	Columns() []string
	// Scan stores the named column's value into dest, which must be a
	// non-nil pointer. It fails with a *FieldError.
	Scan(column string, dest any) error
}

// FieldError reports a column that could not be decoded.
type FieldError struct {
	Table  string
	Column string
	// Err is ErrFieldMissing or wraps ErrFieldMismatch.
	Err error
}

func (e *FieldError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("table %s: column %s: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("column %s: %v", e.Column, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MissingField returns the error for a column absent from a row.
func MissingField(column string) *FieldError {
	return &FieldError{Column: column, Err: ErrFieldMissing}
}

// MismatchedField returns the error for a column whose value could not be
// scanned; cause is kept in the chain.
func MismatchedField(column string, cause error) *FieldError {
	return &FieldError{Column: column, Err: fmt.Errorf("%w: %w", ErrFieldMismatch, cause)}
}

// ColumnIndex finds name in columns. Unquoted identifiers are case-folded by
// the server, so the comparison is case-insensitive. It returns -1 when name
// is absent.
func ColumnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	key := foldName(name)
	for i, c := range columns {
		if foldName(c) == key {
			return i
		}
	}
	return -1
}

func foldName(s string) string {
	return cases.Fold().String(s)
}
