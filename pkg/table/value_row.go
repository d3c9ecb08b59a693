package table

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ValueRow is a Row over already-decoded values, such as those produced by a
// database/sql driver. Scan decodes with weakly typed input: integer widths
// (with overflow checks), integers to bool and back, numeric text, string and
// []byte, RFC 3339 text to time.Time, and element-wise between slices.
type ValueRow struct {
	Names  []string
	Values []any
}

// NewValueRow pairs names with values. Both slices are used as-is.
func NewValueRow(names []string, values []any) *ValueRow {
	return &ValueRow{Names: names, Values: values}
}

func (r *ValueRow) Columns() []string { return r.Names }

func (r *ValueRow) Scan(column string, dest any) error {
	i := ColumnIndex(r.Names, column)
	if i < 0 || i >= len(r.Values) {
		return MissingField(column)
	}
	if err := assign(dest, r.Values[i]); err != nil {
		return MismatchedField(column, err)
	}
	return nil
}

var scanHook = mapstructure.ComposeDecodeHookFunc(
	checkIntRange,
	mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
)

// assign stores src into the value dest points to.
func assign(dest, src any) error {
	if s, ok := dest.(sql.Scanner); ok {
		return s.Scan(src)
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	elem := dv.Elem()

	if src == nil {
		switch elem.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			elem.SetZero()
			return nil
		}
		return fmt.Errorf("cannot store NULL in %s", elem.Type())
	}
	if sv := reflect.ValueOf(src); sv.Type().AssignableTo(elem.Type()) {
		elem.Set(sv)
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dest,
		WeaklyTypedInput: true,
		DecodeHook:       scanHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

// checkIntRange rejects integers that do not fit the destination's width or
// sign; the decoder itself truncates them silently.
func checkIntRange(from, to reflect.Value) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case from.CanInt():
			if to.OverflowInt(from.Int()) {
				return nil, fmt.Errorf("value %d overflows %s", from.Int(), to.Type())
			}
		case from.CanUint():
			if u := from.Uint(); u > 1<<63-1 || to.OverflowInt(int64(u)) {
				return nil, fmt.Errorf("value %d overflows %s", u, to.Type())
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch {
		case from.CanInt():
			if i := from.Int(); i < 0 || to.OverflowUint(uint64(i)) {
				return nil, fmt.Errorf("value %d overflows %s", i, to.Type())
			}
		case from.CanUint():
			if to.OverflowUint(from.Uint()) {
				return nil, fmt.Errorf("value %d overflows %s", from.Uint(), to.Type())
			}
		}
	}
	return from.Interface(), nil
}
