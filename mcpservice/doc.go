// Package mcpservice exposes the capability interfaces a transport routes MCP
// requests to, together with function-backed implementations of them.
//
// A ServerCapabilities value answers initialize and hands out the tools,
// resources and logging capabilities. The dynamic constructors adapt plain
// functions to those capabilities, which lets a backend install exactly the
// handlers it needs:
//
//	tools := mcpservice.NewDynamicTools(
//	    mcpservice.WithToolsListFn(listFn),
//	    mcpservice.WithToolsCallFn(callFn),
//	)
//	srv := mcpservice.NewServer(
//	    mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: "demo", Version: "1.0.0"}),
//	    mcpservice.WithToolsCapability(tools),
//	)
//
// Capability discovery methods return (cap, ok, err). A false ok indicates the
// capability is not supported for the session; err is reserved for internal
// failures. All implementations MUST be safe for concurrent use and honor
// context cancellation.
package mcpservice
