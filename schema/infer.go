package schema

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

// Describer may be implemented by argument types to describe the tool they
// feed. It takes precedence over a description attached via JSONSchemaExtend.
type Describer interface {
	ToolDescription() string
}

var (
	contextType   = reflect.TypeFor[context.Context]()
	describerType = reflect.TypeFor[Describer]()

	inferCache sync.Map // reflect.Type -> Contract
)

// Infer derives a Contract from the argument type A.
func Infer[A any]() Contract {
	return InferType(reflect.TypeFor[A]())
}

// InferType derives a Contract from t. Pointer types are dereferenced. A type
// that is not a struct yields an empty contract. InferType never fails:
// anything it cannot classify is treated as a string parameter.
func InferType(t reflect.Type) Contract {
	if t == nil {
		return Contract{}
	}
	if c, ok := inferCache.Load(t); ok {
		return cloneContract(c.(Contract))
	}
	c := inferType(t)
	inferCache.Store(t, c)
	return cloneContract(c)
}

func inferType(t reflect.Type) Contract {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return Contract{}
	}

	// The root is taken from the reflected schema rather than from the
	// definitions map, which has no entry for unnamed struct types.
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.ReflectFromType(base)

	fields := make(map[string]fieldInfo)
	collectFields(base, fields)

	var (
		params   []Param
		required []string
	)
	if s != nil && s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			name, prop := el.Key, el.Value
			fi, known := fields[name]
			if known && fi.skip {
				continue
			}
			p := Param{Name: name, Type: coarseType(prop)}
			if prop != nil {
				p.Description = prop.Description
			}
			params = append(params, p)
			if known && fi.required && (prop == nil || prop.Default == nil) {
				required = append(required, name)
			}
		}
	}

	c := NewContract(params, required...)
	if s != nil {
		c.Description = s.Description
	}
	if base.Implements(describerType) {
		c.Description = reflect.Zero(base).Interface().(Describer).ToolDescription()
	} else if reflect.PointerTo(base).Implements(describerType) {
		c.Description = reflect.New(base).Interface().(Describer).ToolDescription()
	}
	return c
}

type fieldInfo struct {
	required bool
	skip     bool
}

// collectFields mirrors encoding/json field naming, descending into embedded
// structs that carry no json name of their own.
func collectFields(t reflect.Type, out map[string]fieldInfo) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFields(ft, out)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}

		if f.Type == contextType || f.Type.Implements(contextType) {
			out[name] = fieldInfo{skip: true}
			continue
		}

		// An explicit jsonschema "required" outranks omitempty, omitzero and
		// pointer fields; a default still makes the field optional.
		js := f.Tag.Get("jsonschema")
		optional := f.Type.Kind() == reflect.Pointer ||
			hasOpt(opts, "omitempty") ||
			hasOpt(opts, "omitzero")
		if hasOpt(js, "required") {
			optional = false
		}
		if strings.Contains(js, "default=") {
			optional = true
		}
		out[name] = fieldInfo{required: !optional}
	}
}

func hasOpt(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

// coarseType collapses a reflected schema node to one of the six tags.
func coarseType(s *jsonschema.Schema) Type {
	if s == nil {
		return TypeString
	}
	if t := Type(s.Type); t.Valid() {
		return t
	}
	for _, alts := range [][]*jsonschema.Schema{s.AnyOf, s.OneOf} {
		for _, alt := range alts {
			if alt == nil {
				continue
			}
			if t := Type(alt.Type); t.Valid() {
				return t
			}
		}
	}
	return TypeString
}

func cloneContract(c Contract) Contract {
	out := Contract{Description: c.Description}
	if c.Params != nil {
		out.Params = append([]Param(nil), c.Params...)
	}
	if c.Required != nil {
		out.Required = append([]string(nil), c.Required...)
	}
	return out
}
