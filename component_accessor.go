package warehouse

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// dynamicAccessor reads and writes component values on a table.Table by
// reflect.Type rather than by a compile-time Accessor[T]. It backs the
// runtime-typed half of the query engine (DynamicQuery) and the command
// buffer's value-carrying operations, generalizing the reflect walk the
// teacher used once inline for AddComponentWithValue into a reusable helper.
type dynamicAccessor struct{}

func (dynamicAccessor) set(tbl table.Table, row int, value any) error {
	valueType := reflect.TypeOf(value)
	for _, r := range tbl.Rows() {
		if r.Type().Elem() == valueType {
			reflect.Value(r).Index(row).Set(reflect.ValueOf(value))
			return nil
		}
	}
	return BadTypeError{Want: valueType.String(), Got: valueType.String()}
}

func (dynamicAccessor) get(tbl table.Table, row int, valueType reflect.Type) (any, bool) {
	for _, r := range tbl.Rows() {
		if r.Type().Elem() == valueType {
			return reflect.Value(r).Index(row).Interface(), true
		}
	}
	return nil, false
}
