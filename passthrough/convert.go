package passthrough

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	toolkit "github.com/ggoodman/mcp-toolkit-go/mcp"
)

// toResult converts an engine call result into the SDK's result type. The
// engine only produces text blocks.
func toResult(r *toolkit.CallToolResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: r.IsError, Content: make([]mcp.Content, 0, len(r.Content))}
	for _, c := range r.Content {
		out.Content = append(out.Content, &mcp.TextContent{Text: c.Text})
	}
	return out
}
