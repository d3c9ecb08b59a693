package ddl

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// TypeDef pairs a user-defined type name with the statement that creates it.
type TypeDef struct {
	Name string
	SQL  string
}

// IndexDef pairs an index with the column it covers and its CREATE statement.
type IndexDef struct {
	Name   string
	Column string
	SQL    string
}

// BuildCreateTypeSQL renders CREATE TYPE for a composite or enum:
//
//	CREATE TYPE point2d AS (x smallint, y smallint)
//	CREATE TYPE mood AS ENUM ('sad', 'ok')
//
// Field types are rendered by unwrapping arrays (appending []) and composites
// (using the type name) down to the scalar type name.
func BuildCreateTypeSQL(t ColumnType) (string, error) {
	if err := validateType(t); err != nil {
		return "", fmt.Errorf("ddl: %w", err)
	}
	switch t := t.(type) {
	case Composite:
		fields := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, f.Name+" "+f.Type.SQLName())
		}
		return fmt.Sprintf("CREATE TYPE %s AS (%s)", t.Name, strings.Join(fields, ", ")), nil
	case Enum:
		labels := make([]string, 0, len(t.Labels))
		for _, l := range t.Labels {
			labels = append(labels, quoteLiteral(l))
		}
		return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", t.Name, strings.Join(labels, ", ")), nil
	default:
		return "", fmt.Errorf("ddl: %s is not a user-defined type", t.SQLName())
	}
}

// BuildCreateTypesSQL discovers the user-defined types referenced by cols and
// renders their CREATE TYPE statements in dependency order.
func BuildCreateTypesSQL(d Dialect, cols []Column) ([]TypeDef, error) {
	types, err := DiscoverTypes(cols)
	if err != nil {
		return nil, err
	}
	if len(types) > 0 && d != Postgres {
		return nil, fmt.Errorf("ddl: %w: %s has no %s type", ErrUnsupportedType, d, types[0].SQLName())
	}
	defs := make([]TypeDef, 0, len(types))
	for _, t := range types {
		sql, err := BuildCreateTypeSQL(t)
		if err != nil {
			return nil, err
		}
		defs = append(defs, TypeDef{Name: t.SQLName(), SQL: sql})
	}
	return defs, nil
}

// BuildCreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement with the
// columns in the given order followed by the table constraints:
//
//	CREATE TABLE IF NOT EXISTS figures (name varchar NOT NULL, polygon point2d[] NOT NULL)
//
// Rules:
//   - table and every column name must be valid unquoted identifiers.
//   - at least one column is required.
//   - NOT NULL is emitted unless the column is nullable; PRIMARY KEY implies it.
func BuildCreateTableSQL(d Dialect, table string, cols []Column, constraints []Constraint) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if err := ValidQualifiedIdent(table); err != nil {
		return "", fmt.Errorf("ddl: table: %w", err)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	parts := make([]string, 0, len(cols)+len(constraints))
	for _, c := range cols {
		if err := c.Validate(); err != nil {
			return "", fmt.Errorf("ddl: table %s: %w", table, err)
		}
		if err := d.supports(c.Type); err != nil {
			return "", fmt.Errorf("ddl: table %s: column %s: %w", table, c.Name, err)
		}
		parts = append(parts, c.definition())
	}
	for _, con := range constraints {
		sql, err := con.SQL()
		if err != nil {
			return "", fmt.Errorf("ddl: table %s: %w", table, err)
		}
		parts = append(parts, sql)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(parts, ", ")), nil
}

// BuildCreateIndexSQL renders the CREATE INDEX IF NOT EXISTS statement for an
// indexed column. The index name is derived from the table and column names,
// so running it again is a no-op.
func BuildCreateIndexSQL(d Dialect, table string, c Column) (IndexDef, error) {
	if err := ValidQualifiedIdent(table); err != nil {
		return IndexDef{}, fmt.Errorf("ddl: table: %w", err)
	}
	if err := ValidIdent(c.Name); err != nil {
		return IndexDef{}, fmt.Errorf("ddl: index column: %w", err)
	}

	name := IndexName(table, c.Name)
	var sql string
	switch d {
	case SQLite:
		// SQLite puts the schema on the index name, never on the table.
		target := name
		if s := schemaOf(table); s != "" {
			target = s + "." + name
		}
		sql = fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", target, unqualified(table), c.Name)
	default:
		using := ""
		if c.IndexMethod != "" {
			using = " USING " + string(c.IndexMethod)
		}
		sql = fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s%s (%s)", name, table, using, c.Name)
	}
	return IndexDef{Name: name, Column: c.Name, SQL: sql}, nil
}

// BuildCreateIndicesSQL renders one CREATE INDEX statement per indexed column,
// in column order.
func BuildCreateIndicesSQL(d Dialect, table string, cols []Column) ([]IndexDef, error) {
	var defs []IndexDef
	for _, c := range cols {
		if !c.Indexed {
			continue
		}
		def, err := BuildCreateIndexSQL(d, table, c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// IndexName returns <table>_<column>_idx, using the unqualified table name.
// Names that would exceed MaxIdentLen are cut and suffixed with a hash of the
// full name so that distinct columns keep distinct index names.
func IndexName(table, column string) string {
	name := unqualified(table) + "_" + column + "_idx"
	if len(name) <= MaxIdentLen {
		return name
	}
	sum := fmt.Sprintf("%016x", xxh3.HashString(name))
	return name[:MaxIdentLen-len(sum)-1] + "_" + sum
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
