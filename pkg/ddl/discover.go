package ddl

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrTypeCycle is returned when a composite type refers back to itself,
	// directly or through other composites.
	ErrTypeCycle = errors.New("composite type cycle")

	// ErrTypeConflict is returned when two different definitions share a name.
	ErrTypeConflict = errors.New("conflicting type definitions")
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

type discovery struct {
	state map[string]visitState
	defs  map[string]ColumnType
	path  []string
	order []ColumnType
}

// DiscoverTypes walks every column type, through arrays and composite fields,
// and returns each distinct composite or enum once. A type always comes after
// every type it references; otherwise types keep the order in which they are
// first reached.
func DiscoverTypes(cols []Column) ([]ColumnType, error) {
	d := &discovery{
		state: make(map[string]visitState),
		defs:  make(map[string]ColumnType),
	}
	for _, c := range cols {
		if c.Type == nil {
			return nil, fmt.Errorf("ddl: column %s missing type", c.Name)
		}
		if err := d.walk(c.Type); err != nil {
			return nil, fmt.Errorf("ddl: column %s: %w", c.Name, err)
		}
	}
	return d.order, nil
}

func (d *discovery) walk(t ColumnType) error {
	switch t := t.(type) {
	case Scalar:
		return nil
	case Array:
		if t.Elem == nil {
			return errors.New("array with no element type")
		}
		return d.walk(t.Elem)
	case Enum:
		return d.enter(t.Name, t, nil)
	case Composite:
		return d.enter(t.Name, t, func() error {
			for _, f := range t.Fields {
				if f.Type == nil {
					return fmt.Errorf("type %s: field %s missing type", t.Name, f.Name)
				}
				if err := d.walk(f.Type); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return fmt.Errorf("unknown column type %T", t)
	}
}

// enter visits a named user type. deps walks the types it depends on.
func (d *discovery) enter(name string, t ColumnType, deps func() error) error {
	switch d.state[name] {
	case visiting:
		cycle := append(append([]string(nil), d.path[d.indexOf(name):]...), name)
		return fmt.Errorf("%w: %s", ErrTypeCycle, strings.Join(cycle, " -> "))
	case visited:
		if !reflect.DeepEqual(d.defs[name], t) {
			return fmt.Errorf("%w: %s", ErrTypeConflict, name)
		}
		return nil
	}

	d.state[name] = visiting
	d.defs[name] = t
	d.path = append(d.path, name)
	if deps != nil {
		if err := deps(); err != nil {
			return err
		}
	}
	d.path = d.path[:len(d.path)-1]
	d.state[name] = visited
	d.order = append(d.order, t)
	return nil
}

func (d *discovery) indexOf(name string) int {
	for i, n := range d.path {
		if n == name {
			return i
		}
	}
	return 0
}
