package ddl

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedType is returned when a dialect cannot represent a column type.
var ErrUnsupportedType = errors.New("unsupported column type")

// Dialect selects the few places where generated SQL differs by backend.
type Dialect int

const (
	// Postgres numbers placeholders $1..$N and supports user-defined types.
	Postgres Dialect = iota
	// SQLite uses ? placeholders and has no composite, enum or array types.
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Placeholder returns the bind marker for the n-th (1-based) parameter.
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// MaxParams is the largest number of bind parameters one statement may
// carry.
func (d Dialect) MaxParams() int {
	if d == SQLite {
		return 32766
	}
	return 65535
}

// supports reports an error if t cannot be used as a column type in d.
func (d Dialect) supports(t ColumnType) error {
	if d == SQLite {
		if _, ok := t.(Scalar); !ok {
			return fmt.Errorf("%w: %s has no %s type", ErrUnsupportedType, d, t.SQLName())
		}
	}
	return nil
}
