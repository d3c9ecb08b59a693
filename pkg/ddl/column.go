package ddl

import (
	"fmt"
	"slices"
	"strings"
)

// IndexMethod selects the access method of a secondary index.
type IndexMethod string

const (
	BTree  IndexMethod = "btree"
	Hash   IndexMethod = "hash"
	GiST   IndexMethod = "gist"
	SPGiST IndexMethod = "spgist"
	GIN    IndexMethod = "gin"
	BRIN   IndexMethod = "brin"
)

// Reference is the target of a REFERENCES column constraint.
type Reference struct {
	Table  string
	Column string
}

// Column describes one table column. Columns are values; building or copying
// one never affects another.
type Column struct {
	Name string
	Type ColumnType

	// Indexed requests a secondary index named by IndexName.
	Indexed     bool
	IndexMethod IndexMethod

	Nullable   bool
	Unique     bool
	PrimaryKey bool
	References *Reference
}

// NewColumn returns a NOT NULL, non-indexed column.
func NewColumn(name string, t ColumnType) Column {
	return Column{Name: name, Type: t}
}

// ColumnBuilder configures a Column fluently:
//
//	ddl.Build("name", ddl.Varchar).Index().Finish()
type ColumnBuilder struct {
	col Column
}

// Build starts a column definition.
func Build(name string, t ColumnType) *ColumnBuilder {
	return &ColumnBuilder{col: NewColumn(name, t)}
}

// Index marks the column as indexed. Calling it more than once has no further
// effect.
func (b *ColumnBuilder) Index() *ColumnBuilder {
	b.col.Indexed = true
	return b
}

// IndexUsing marks the column as indexed with the given access method.
func (b *ColumnBuilder) IndexUsing(m IndexMethod) *ColumnBuilder {
	b.col.Indexed = true
	b.col.IndexMethod = m
	return b
}

// Nullable allows NULL values.
func (b *ColumnBuilder) Nullable() *ColumnBuilder {
	b.col.Nullable = true
	return b
}

// Unique adds a UNIQUE constraint.
func (b *ColumnBuilder) Unique() *ColumnBuilder {
	b.col.Unique = true
	return b
}

// PrimaryKey makes the column the table's primary key. It implies UNIQUE and
// NOT NULL.
func (b *ColumnBuilder) PrimaryKey() *ColumnBuilder {
	b.col.PrimaryKey = true
	b.col.Unique = true
	b.col.Nullable = false
	return b
}

// References adds a foreign key to table(column).
func (b *ColumnBuilder) References(table, column string) *ColumnBuilder {
	b.col.References = &Reference{Table: table, Column: column}
	return b
}

// Finish returns the configured column.
func (b *ColumnBuilder) Finish() Column {
	c := b.col
	if c.References != nil {
		ref := *c.References
		c.References = &ref
	}
	return c
}

// Validate checks the column's own name, its reference and every name inside
// its type.
func (c Column) Validate() error {
	if err := ValidIdent(c.Name); err != nil {
		return fmt.Errorf("column: %w", err)
	}
	if c.Type == nil {
		return fmt.Errorf("column %s: missing type", c.Name)
	}
	if err := validateType(c.Type); err != nil {
		return fmt.Errorf("column %s: %w", c.Name, err)
	}
	if c.References != nil {
		if err := ValidQualifiedIdent(c.References.Table); err != nil {
			return fmt.Errorf("column %s: references: %w", c.Name, err)
		}
		if err := ValidIdent(c.References.Column); err != nil {
			return fmt.Errorf("column %s: references: %w", c.Name, err)
		}
	}
	return nil
}

func validateType(t ColumnType) error {
	return validateTypeOn(nil, t)
}

// validateTypeOn walks t with path holding the enclosing composite names; a
// name seen again on the path is a cycle.
func validateTypeOn(path []string, t ColumnType) error {
	switch t := t.(type) {
	case Scalar:
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("scalar type with empty name")
		}
	case Composite:
		if err := ValidQualifiedIdent(t.Name); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		if i := slices.Index(path, t.Name); i >= 0 {
			cycle := append(slices.Clone(path[i:]), t.Name)
			return fmt.Errorf("%w: %s", ErrTypeCycle, strings.Join(cycle, " -> "))
		}
		path = append(path[:len(path):len(path)], t.Name)
		for _, f := range t.Fields {
			if err := ValidIdent(f.Name); err != nil {
				return fmt.Errorf("type %s: field: %w", t.Name, err)
			}
			if f.Type == nil {
				return fmt.Errorf("type %s: field %s: missing type", t.Name, f.Name)
			}
			if err := validateTypeOn(path, f.Type); err != nil {
				return err
			}
		}
	case Enum:
		if err := ValidQualifiedIdent(t.Name); err != nil {
			return fmt.Errorf("type: %w", err)
		}
	case Array:
		if t.Elem == nil {
			return fmt.Errorf("array with no element type")
		}
		return validateTypeOn(path, t.Elem)
	default:
		return fmt.Errorf("unknown column type %T", t)
	}
	return nil
}

// definition renders "<name> <type>[ NOT NULL][ UNIQUE| PRIMARY KEY][ REFERENCES t(c)]".
func (c Column) definition() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	sb.WriteString(c.Type.SQLName())

	switch {
	case c.PrimaryKey:
		// PRIMARY KEY already implies NOT NULL and UNIQUE.
		sb.WriteString(" PRIMARY KEY")
	case c.Unique:
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		sb.WriteString(" UNIQUE")
	case !c.Nullable:
		sb.WriteString(" NOT NULL")
	}

	if r := c.References; r != nil {
		fmt.Fprintf(&sb, " REFERENCES %s(%s)", r.Table, r.Column)
	}
	return sb.String()
}
