// Package mcp contains the protocol data types and constants shared by the
// stdio transport, the request router (mcpservice) and the execution engine.
// It mirrors the wire representation of the Model Context Protocol while
// keeping the surface Go-friendly: exported structs with json tags and string
// constants for method names.
//
// The package is free of transport logic. The stdio package implements its
// own framing; the engine builds results out of these concrete types.
//
// Example (tool result construction):
//
//	res := &mcp.CallToolResult{
//	    Content: []mcp.ContentBlock{{Type: mcp.ContentTypeText, Text: "hello"}},
//	}
//
// LatestProtocolVersion reflects the protocol date the library targets.
// Transports negotiate versions at runtime using IsSupportedProtocolVersion.
package mcp
