package engine

import (
	"context"
	"log/slog"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcpservice"
)

// ListTools returns the descriptor of every registered tool in registration
// order.
func (e *Engine) ListTools() []mcp.Tool {
	tools := e.reg.Tools()
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Descriptor())
	}
	return out
}

// CallTool executes the named tool and wraps the outcome as a call result. A
// success is one text block holding the result. A failure is converted once
// through the error handler and returned as an error result whose text is the
// JSON error response.
func (e *Engine) CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	res, err := e.Execute(ctx, name, args)
	if err != nil {
		return e.ErrorResult(ctx, err)
	}
	return mcpservice.TextResult(Text(res))
}

// ErrorResult converts err through the error handler into an error result.
// Failures detected before a call reaches Execute, such as malformed
// arguments, are reported through it.
func (e *Engine) ErrorResult(ctx context.Context, err error) *mcp.CallToolResult {
	return mcpservice.Errorf("%s", e.handler.HandleContext(ctx, err).Text())
}

func (e *Engine) logAttrs(ctx context.Context, msg string, attrs ...slog.Attr) {
	e.log.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
