package mcpservice

import (
	"fmt"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
)

// TextResult builds a successful single text block tool result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: mcp.ContentTypeText, Text: text}},
	}
}

// Errorf builds an error tool result with a formatted text message.
func Errorf(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: mcp.ContentTypeText, Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
