package schema

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

// Validate checks args against c. All required parameters are checked for
// presence before any type is checked, so a call that is both missing a
// parameter and mistyped reports the missing one. Keys not in the contract
// are ignored. A null value is accepted for optional parameters only.
func Validate(c Contract, args map[string]any) error {
	for _, name := range c.Required {
		if _, ok := args[name]; !ok {
			return mcperr.MissingParameter(name)
		}
	}
	for _, p := range c.Params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		if v == nil {
			if c.IsRequired(p.Name) {
				return mcperr.InvalidParameter(p.Name, string(p.Type))
			}
			continue
		}
		if !Matches(p.Type, v) {
			return mcperr.InvalidParameter(p.Name, string(p.Type))
		}
	}
	return nil
}

// Matches reports whether v is acceptable for a parameter of type t.
func Matches(t Type, v any) bool {
	if v == nil {
		return false
	}
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeInteger:
		return isInteger(v)
	case TypeNumber:
		return isNumber(v)
	case TypeArray:
		k := reflect.TypeOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	case TypeObject:
		k := reflect.TypeOf(v).Kind()
		if k == reflect.Pointer {
			k = reflect.TypeOf(v).Elem().Kind()
		}
		return k == reflect.Map || k == reflect.Struct
	default:
		return true
	}
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
		f, err := n.Float64()
		return err == nil && isIntegral(f)
	case float32:
		return isIntegral(float64(n))
	case float64:
		return isIntegral(n)
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumber(v any) bool {
	if n, ok := v.(json.Number); ok {
		_, err := n.Float64()
		return err == nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}
