// Package schema derives parameter contracts for tools and validates call
// arguments against them.
//
// A Contract is an ordered list of parameters with coarse JSON types and a set
// of required names. Contracts are either inferred from a Go argument struct:
//
//	type searchArgs struct {
//	    Query string `json:"query" jsonschema:"description=Search terms"`
//	    Limit *int   `json:"limit"`
//	}
//	c := schema.Infer[searchArgs]() // query required, limit optional
//
// or declared explicitly with a Builder:
//
//	c := schema.Build().String("query", schema.Required()).Integer("limit").Contract()
//
// Validate checks presence of required parameters first and types second,
// failing with MISSING_PARAMETER or INVALID_PARAMETER errors from mcperr.
package schema
