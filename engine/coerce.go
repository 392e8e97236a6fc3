package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Coerce normalizes a tool result into a transport-friendly value. Strings,
// booleans, numbers, slices, arrays, maps, nil, json.Number and
// json.RawMessage pass through. Pointers are dereferenced. Any other value,
// such as a struct, becomes {"result": text} where text is its String method
// when it has one and its default format otherwise.
func Coerce(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	if isPrimitive(rv) {
		return v
	}
	if s, ok := v.(fmt.Stringer); ok {
		return map[string]any{"result": s.String()}
	}
	if rv.Kind() == reflect.Pointer {
		return Coerce(rv.Elem().Interface())
	}
	return map[string]any{"result": fmt.Sprint(v)}
}

func isPrimitive(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// Text renders a coerced value as the text of a content block. Strings are
// used verbatim; everything else is JSON encoded, falling back to the
// default format when encoding fails.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.RawMessage:
		return string(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
