package main

import (
	"fmt"

	"pgtable/pkg/ddl"
	"pgtable/pkg/table"
)

// Point is a vertex stored as the point2d composite.
type Point struct {
	X int16
	Y int16
}

// Figure is a named polygon.
type Figure struct {
	Name    string
	Polygon []Point
}

var point2d = ddl.StructType("point2d", ddl.F("x", ddl.Int2), ddl.F("y", ddl.Int2))

var figures = table.Map("figures",
	table.Col(ddl.Build("name", ddl.Varchar).Index().Finish(), func(f *Figure) *string { return &f.Name }),
	table.Col(ddl.NewColumn("polygon", ddl.ArrayType(point2d)), func(f *Figure) *[]Point { return &f.Polygon }),
).MustValidate()

func (Figure) Descriptor() *table.Descriptor  { return figures.Descriptor() }
func (f Figure) Values() []any                { return figures.Values(&f) }
func (f *Figure) DecodeRow(r table.Row) error { return figures.Decode(r, f) }

var trapezoid = Figure{
	Name:    "trapezoid",
	Polygon: []Point{{0, 0}, {2, 4}, {3, 4}, {6, 0}},
}

// generated returns the i-th synthetic figure: a right triangle whose legs
// grow with i.
func generated(i int) Figure {
	n := int16(i%1000 + 1)
	return Figure{
		Name:    fmt.Sprintf("triangle_%d", i),
		Polygon: []Point{{0, 0}, {n, 0}, {0, n}},
	}
}
