package ddl

import (
	"fmt"
	"strings"
)

type constraintKind int

const (
	checkConstraint constraintKind = iota + 1
	primaryKeyConstraint
	uniqueConstraint
	foreignKeyConstraint
)

// Constraint is a named table-level constraint rendered after the column
// definitions of CREATE TABLE. Build one with Check, PrimaryKeyOn, UniqueOn or
// ForeignKey.
type Constraint struct {
	Name string

	kind       constraintKind
	expr       string
	columns    []string
	refTable   string
	refColumns []string
}

// Check is CONSTRAINT name CHECK (expr). The expression is raw SQL written by
// the record author.
func Check(name, expr string) Constraint {
	return Constraint{Name: name, kind: checkConstraint, expr: expr}
}

// PrimaryKeyOn is a (possibly composite) primary key.
func PrimaryKeyOn(name string, columns ...string) Constraint {
	return Constraint{Name: name, kind: primaryKeyConstraint, columns: append([]string(nil), columns...)}
}

// UniqueOn is a (possibly composite) uniqueness constraint.
func UniqueOn(name string, columns ...string) Constraint {
	return Constraint{Name: name, kind: uniqueConstraint, columns: append([]string(nil), columns...)}
}

// ForeignKey references refTable(refColumns) from columns.
func ForeignKey(name string, columns []string, refTable string, refColumns ...string) Constraint {
	return Constraint{
		Name:       name,
		kind:       foreignKeyConstraint,
		columns:    append([]string(nil), columns...),
		refTable:   refTable,
		refColumns: append([]string(nil), refColumns...),
	}
}

// SQL renders the constraint clause.
func (c Constraint) SQL() (string, error) {
	if err := ValidIdent(c.Name); err != nil {
		return "", fmt.Errorf("constraint: %w", err)
	}
	switch c.kind {
	case checkConstraint:
		expr := strings.TrimSpace(c.expr)
		if expr == "" {
			return "", fmt.Errorf("constraint %s: empty CHECK expression", c.Name)
		}
		return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", c.Name, expr), nil
	case primaryKeyConstraint, uniqueConstraint:
		cols, err := identList(c.Name, c.columns)
		if err != nil {
			return "", err
		}
		word := "PRIMARY KEY"
		if c.kind == uniqueConstraint {
			word = "UNIQUE"
		}
		return fmt.Sprintf("CONSTRAINT %s %s (%s)", c.Name, word, cols), nil
	case foreignKeyConstraint:
		cols, err := identList(c.Name, c.columns)
		if err != nil {
			return "", err
		}
		if err := ValidQualifiedIdent(c.refTable); err != nil {
			return "", fmt.Errorf("constraint %s: %w", c.Name, err)
		}
		refs, err := identList(c.Name, c.refColumns)
		if err != nil {
			return "", err
		}
		if len(c.columns) != len(c.refColumns) {
			return "", fmt.Errorf("constraint %s: %d columns reference %d columns", c.Name, len(c.columns), len(c.refColumns))
		}
		return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)", c.Name, cols, c.refTable, refs), nil
	default:
		return "", fmt.Errorf("constraint %s: not initialized", c.Name)
	}
}

func identList(owner string, names []string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("constraint %s: no columns", owner)
	}
	for _, n := range names {
		if err := ValidIdent(n); err != nil {
			return "", fmt.Errorf("constraint %s: %w", owner, err)
		}
	}
	return strings.Join(names, ", "), nil
}
