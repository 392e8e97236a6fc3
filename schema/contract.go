package schema

import (
	"fmt"
	"slices"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
)

// Type is a coarse JSON type tag.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Valid reports whether t is one of the six recognized tags.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Param is a single named parameter.
type Param struct {
	Name        string
	Type        Type
	Description string
}

// Contract describes the parameters a tool accepts. Every name in Required is
// also the name of a Param.
type Contract struct {
	Params   []Param
	Required []string
	// Description is the argument type's own description, if any.
	Description string
}

// NewContract builds a Contract, panicking if a required name is not a
// declared parameter or a parameter name repeats. Unrecognized types fall back
// to string.
func NewContract(params []Param, required ...string) Contract {
	seen := make(map[string]bool, len(params))
	ps := make([]Param, len(params))
	for i, p := range params {
		if p.Name == "" {
			panic("schema: parameter name must not be empty")
		}
		if seen[p.Name] {
			panic(fmt.Sprintf("schema: duplicate parameter %q", p.Name))
		}
		seen[p.Name] = true
		if !p.Type.Valid() {
			p.Type = TypeString
		}
		ps[i] = p
	}
	var req []string
	for _, r := range required {
		if !seen[r] {
			panic(fmt.Sprintf("schema: required parameter %q is not declared", r))
		}
		if !slices.Contains(req, r) {
			req = append(req, r)
		}
	}
	return Contract{Params: ps, Required: req}
}

// Param returns the parameter with the given name.
func (c Contract) Param(name string) (Param, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// IsRequired reports whether name is in the required set.
func (c Contract) IsRequired(name string) bool {
	return slices.Contains(c.Required, name)
}

// InputSchema renders the contract as an MCP tool input schema.
func (c Contract) InputSchema() mcp.ToolInputSchema {
	props := make(map[string]mcp.SchemaProperty, len(c.Params))
	for _, p := range c.Params {
		props[p.Name] = mcp.SchemaProperty{Type: string(p.Type), Description: p.Description}
	}
	var required []string
	if len(c.Required) > 0 {
		required = append(required, c.Required...)
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// JSONSchema renders the contract as a generic JSON Schema document.
func (c Contract) JSONSchema() map[string]any {
	props := make(map[string]any, len(c.Params))
	for _, p := range c.Params {
		prop := map[string]any{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(c.Required) > 0 {
		out["required"] = append([]string(nil), c.Required...)
	}
	return out
}
