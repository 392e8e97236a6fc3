package schema

import (
	"encoding/json"
	"testing"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

func TestValidateMissingBeforeType(t *testing.T) {
	c := Build().Integer("a", Required()).Integer("b", Required()).Contract()
	err := Validate(c, map[string]any{"a": "text"})
	e, ok := mcperr.As(err)
	if !ok || e.Kind != mcperr.KindMissingParam {
		t.Fatalf("err = %v", err)
	}
	if e.Details["parameter"] != "b" {
		t.Fatalf("parameter = %v", e.Details["parameter"])
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	c := Build().Integer("a", Required()).Contract()
	err := Validate(c, map[string]any{"a": "5"})
	e, ok := mcperr.As(err)
	if !ok || e.Kind != mcperr.KindInvalidParam {
		t.Fatalf("err = %v", err)
	}
	if e.Details["parameter"] != "a" || e.Details["expected_type"] != "integer" {
		t.Fatalf("details = %v", e.Details)
	}
}

func TestValidateAccepts(t *testing.T) {
	c := Build().
		Integer("i", Required()).
		Number("n", Required()).
		Boolean("b", Required()).
		Array("xs", Required()).
		Object("o", Required()).
		String("s").
		Contract()
	args := map[string]any{
		"i":     float64(3),
		"n":     json.Number("2.5"),
		"b":     false,
		"xs":    []any{1, 2},
		"o":     map[string]any{},
		"s":     nil,
		"extra": struct{}{},
	}
	if err := Validate(c, args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		t    Type
		v    any
		want bool
	}{
		{TypeInteger, 3, true},
		{TypeInteger, uint8(3), true},
		{TypeInteger, 3.5, false},
		{TypeInteger, json.Number("7"), true},
		{TypeInteger, true, false},
		{TypeNumber, true, false},
		{TypeNumber, int64(1), true},
		{TypeNumber, "1", false},
		{TypeString, json.Number("1"), false},
		{TypeArray, "abc", false},
		{TypeArray, [2]int{}, true},
		{TypeObject, struct{}{}, true},
		{TypeObject, []any{}, false},
		{TypeBoolean, nil, false},
	}
	for _, tc := range cases {
		if got := Matches(tc.t, tc.v); got != tc.want {
			t.Errorf("Matches(%s, %#v) = %v, want %v", tc.t, tc.v, got, tc.want)
		}
	}
}

func TestValidateRequiredNull(t *testing.T) {
	c := Build().String("s", Required()).Contract()
	if !mcperr.IsKind(Validate(c, map[string]any{"s": nil}), mcperr.KindInvalidParam) {
		t.Fatal("null for a required parameter should be invalid")
	}
}
