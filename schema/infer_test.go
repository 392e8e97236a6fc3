package schema

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

type searchArgs struct {
	Query   string         `json:"query" jsonschema:"description=Search terms"`
	Limit   *int           `json:"limit"`
	Tags    []string       `json:"tags,omitempty"`
	Exact   bool           `json:"exact"`
	Score   float64        `json:"score,omitzero"`
	Filters map[string]any `json:"filters,omitempty"`
	Mode    string         `json:"mode" jsonschema:"default=fast"`
	Anything any           `json:"anything"`
	Ignored string         `json:"-"`
	hidden  string
}

func (searchArgs) ToolDescription() string { return "Search the index" }

type ctxArgs struct {
	Ctx  context.Context `json:"ctx"`
	Name string          `json:"name"`
}

type Embedded struct {
	Region string `json:"region"`
}

type embeddingArgs struct {
	Embedded
	ID int `json:"id"`
}

func TestInferRequiredAndTypes(t *testing.T) {
	got := Infer[searchArgs]()
	want := Contract{
		Params: []Param{
			{Name: "query", Type: TypeString, Description: "Search terms"},
			{Name: "limit", Type: TypeInteger},
			{Name: "tags", Type: TypeArray},
			{Name: "exact", Type: TypeBoolean},
			{Name: "score", Type: TypeNumber},
			{Name: "filters", Type: TypeObject},
			{Name: "mode", Type: TypeString},
			{Name: "anything", Type: TypeString},
		},
		Required:    []string{"query", "exact", "anything"},
		Description: "Search the index",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("contract mismatch (-want +got):\n%s", diff)
	}
}

func TestInferSimple(t *testing.T) {
	got := Infer[addArgs]()
	if diff := cmp.Diff([]string{"a", "b"}, got.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	for _, p := range got.Params {
		if p.Type != TypeInteger {
			t.Fatalf("param %s type %s", p.Name, p.Type)
		}
	}
}

func TestInferSkipsContext(t *testing.T) {
	got := Infer[ctxArgs]()
	if len(got.Params) != 1 || got.Params[0].Name != "name" {
		t.Fatalf("params = %+v", got.Params)
	}
}

func TestInferEmbedded(t *testing.T) {
	got := Infer[embeddingArgs]()
	if !got.IsRequired("region") || !got.IsRequired("id") {
		t.Fatalf("required = %v", got.Required)
	}
}

func TestInferUnnamedStructs(t *testing.T) {
	empty := Infer[struct{}]()
	if len(empty.Params) != 0 || len(empty.Required) != 0 {
		t.Fatalf("expected empty contract, got %+v", empty)
	}

	got := Infer[*struct {
		Msg   string `json:"msg" jsonschema:"description=Text to echo"`
		Times int    `json:"times,omitempty"`
	}]()
	want := Contract{
		Params: []Param{
			{Name: "msg", Type: TypeString, Description: "Text to echo"},
			{Name: "times", Type: TypeInteger},
		},
		Required: []string{"msg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("contract mismatch (-want +got):\n%s", diff)
	}
}

type explicitRequiredArgs struct {
	Name  string  `json:"name,omitempty" jsonschema:"required"`
	Owner *string `json:"owner" jsonschema:"required,description=Owner id"`
	Note  string  `json:"note,omitempty"`
	Mode  string  `json:"mode" jsonschema:"required,default=fast"`
}

func TestInferExplicitRequiredOutranksOmitempty(t *testing.T) {
	got := Infer[explicitRequiredArgs]()
	if diff := cmp.Diff([]string{"name", "owner"}, got.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestInferNonStruct(t *testing.T) {
	for _, c := range []Contract{Infer[map[string]any](), Infer[int](), InferType(nil)} {
		if len(c.Params) != 0 || len(c.Required) != 0 {
			t.Fatalf("expected empty contract, got %+v", c)
		}
	}
}

func TestInferCacheReturnsCopies(t *testing.T) {
	a := Infer[addArgs]()
	a.Required[0] = "mutated"
	b := Infer[addArgs]()
	if b.Required[0] != "a" {
		t.Fatal("cached contract was mutated through a returned copy")
	}
}

func TestInputSchema(t *testing.T) {
	c := Build().
		String("q", Required(), Describe("query")).
		Integer("limit").
		Contract()
	s := c.InputSchema()
	if s.Type != "object" {
		t.Fatalf("type = %s", s.Type)
	}
	if diff := cmp.Diff([]string{"q"}, s.Required); diff != "" {
		t.Fatalf("required (-want +got):\n%s", diff)
	}
	if s.Properties["q"].Description != "query" || s.Properties["limit"].Type != "integer" {
		t.Fatalf("properties = %+v", s.Properties)
	}

	js := c.JSONSchema()
	if js["type"] != "object" {
		t.Fatalf("json schema type = %v", js["type"])
	}
	if diff := cmp.Diff([]string{"q"}, js["required"]); diff != "" {
		t.Fatalf("json schema required (-want +got):\n%s", diff)
	}
}

func TestNewContractPanicsOnUndeclaredRequired(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewContract([]Param{{Name: "a", Type: TypeString}}, "b")
}

func TestNewContractDefaultsType(t *testing.T) {
	c := NewContract([]Param{{Name: "a", Type: "date"}})
	if c.Params[0].Type != TypeString {
		t.Fatalf("type = %s", c.Params[0].Type)
	}
}
