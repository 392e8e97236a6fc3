// Package engine executes registered tools and reads registered resources.
//
// Execute is the single place a tool call is resolved, validated and invoked.
// It returns either a coerced value or an error; conversion to the wire error
// shape is left to the caller, which does it exactly once through an
// mcperr.Handler. CallTool is that caller for the explicit-dispatch backend: it
// wraps Execute and produces a complete *mcp.CallToolResult.
//
// Asynchronous tools run on their own goroutine and are awaited, so a tool
// that blocks on I/O holds only its own request. The engine imposes no
// deadlines; callers bound a call through the context they pass in.
package engine
