package ddl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func typeNames(types []ColumnType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.SQLName())
	}
	return out
}

// TestDiscoverTypesOrder verifies that every composite comes after the
// composites and enums it references, and that each appears once.
func TestDiscoverTypesOrder(t *testing.T) {
	t.Parallel()

	color := EnumType("color", "red", "green")
	pixel := StructType("pixel", F("at", point2d), F("color", color))
	sprite := StructType("sprite", F("pixels", ArrayType(pixel)), F("origin", point2d))

	tests := []struct {
		name string
		cols []Column
		want []string
	}{
		{
			name: "scalars only",
			cols: []Column{NewColumn("id", Int4), NewColumn("tags", ArrayType(Text))},
			want: []string{},
		},
		{
			name: "array of composite",
			cols: figureColumns(),
			want: []string{"point2d"},
		},
		{
			name: "nested dependencies come first",
			cols: []Column{NewColumn("sprite", sprite)},
			want: []string{"point2d", "color", "pixel", "sprite"},
		},
		{
			name: "shared dependency emitted once",
			cols: []Column{
				NewColumn("a", point2d),
				NewColumn("b", ArrayType(ArrayType(pixel))),
				NewColumn("c", sprite),
				NewColumn("d", color),
			},
			want: []string{"point2d", "color", "pixel", "sprite"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DiscoverTypes(tt.cols)
			require.NoError(t, err)
			require.Equal(t, tt.want, typeNames(got))
		})
	}
}

// TestDiscoverTypesDependencyProperty checks the ordering law on a wider
// graph: each type's composite fields must already have been emitted.
func TestDiscoverTypesDependencyProperty(t *testing.T) {
	t.Parallel()

	a := StructType("a", F("v", Int4))
	b := StructType("b", F("a", a))
	c := StructType("c", F("as", ArrayType(a)), F("b", b))
	d := StructType("d", F("c", c), F("b", ArrayType(b)))
	cols := []Column{NewColumn("d", d), NewColumn("c", c), NewColumn("a", a)}

	got, err := DiscoverTypes(cols)
	require.NoError(t, err)
	require.Len(t, got, 4)

	seen := map[string]bool{}
	for _, typ := range got {
		comp, ok := typ.(Composite)
		require.True(t, ok)
		for _, f := range comp.Fields {
			if dep, ok := BaseType(f.Type).(Composite); ok {
				require.True(t, seen[dep.Name], "%s emitted before its dependency %s", comp.Name, dep.Name)
			}
		}
		require.False(t, seen[comp.Name], "%s emitted twice", comp.Name)
		seen[comp.Name] = true
	}
}

// TestDiscoverTypesCycle verifies that a composite referring back to itself
// by name fails instead of recursing forever.
func TestDiscoverTypesCycle(t *testing.T) {
	t.Parallel()

	self := StructType("node", F("children", ArrayType(StructType("node", F("v", Int4)))))
	inner := StructType("a", F("b", StructType("b", F("a", StructType("a")))))

	tests := []struct {
		name string
		typ  ColumnType
		path string
	}{
		{name: "direct", typ: self, path: "node -> node"},
		{name: "indirect", typ: inner, path: "a -> b -> a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DiscoverTypes([]Column{NewColumn("c", tt.typ)})
			require.Error(t, err)
			require.Nil(t, got)
			require.True(t, errors.Is(err, ErrTypeCycle), "error = %v", err)
			require.Contains(t, err.Error(), tt.path)

			_, err = BuildCreateTypesSQL(Postgres, []Column{NewColumn("c", tt.typ)})
			require.ErrorIs(t, err, ErrTypeCycle)
		})
	}
}

func TestDiscoverTypesConflict(t *testing.T) {
	t.Parallel()

	other := StructType("point2d", F("x", Int4), F("y", Int4))
	_, err := DiscoverTypes([]Column{NewColumn("a", point2d), NewColumn("b", other)})
	require.ErrorIs(t, err, ErrTypeConflict)
}

func TestDiscoverTypesMissingType(t *testing.T) {
	t.Parallel()

	_, err := DiscoverTypes([]Column{NewColumn("a", StructType("p", F("x", nil)))})
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing type")
}
