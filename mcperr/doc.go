// Package mcperr defines the error taxonomy shared by every layer of the
// toolkit and the Handler that converts arbitrary Go errors into the wire
// shaped Response returned to MCP clients.
//
// Failures are raised as *Error values carrying a Kind, a message, a detail
// map and an optional wrapped cause. They travel through ordinary error
// returns and are converted exactly once, at the transport boundary:
//
//	if err := schema.Validate(contract, args); err != nil {
//	    resp := handler.Handle(err)
//	    // resp.Code == "MISSING_PARAMETER"
//	}
//
// Causes and call stacks are diagnostic only. They are attached to a Response
// solely when the Handler runs in verbose mode.
package mcperr
