package engine

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

// ReadResource resolves uri against the registered resources and returns the
// reader's coerced value. Unmatched URIs yield RESOURCE_NOT_FOUND. Typed
// reader failures pass through; any other failure becomes
// TOOL_EXECUTION_FAILED.
func (e *Engine) ReadResource(ctx context.Context, uri string) (any, error) {
	res, vars, ok := e.reg.MatchResource(uri)
	if !ok {
		return nil, mcperr.ResourceNotFound(uri)
	}
	v, err := res.Read(ctx, uri, vars)
	if err != nil {
		if _, typed := mcperr.As(err); !typed {
			err = mcperr.Wrap(mcperr.KindToolExecutionFailed, err, "Failed to read resource '"+uri+"'").
				WithDetail("uri", uri)
		}
		e.logAttrs(ctx, "engine.resource.failed", slog.String("uri", uri), slog.String("err", err.Error()))
		return nil, err
	}
	return Coerce(v), nil
}

// ReadResourceContents reads uri and renders the value as MCP resource
// contents. Byte slices are returned as base64 blobs; every other value is
// rendered with Text.
func (e *Engine) ReadResourceContents(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	res, _, ok := e.reg.MatchResource(uri)
	if !ok {
		return nil, mcperr.ResourceNotFound(uri)
	}
	v, err := e.ReadResource(ctx, uri)
	if err != nil {
		return nil, err
	}
	c := mcp.ResourceContents{URI: uri, MimeType: res.MIMEType()}
	if b, isBytes := v.([]byte); isBytes {
		c.Blob = base64.StdEncoding.EncodeToString(b)
	} else {
		c.Text = Text(v)
	}
	return []mcp.ResourceContents{c}, nil
}

// ListResources returns listing entries for concrete resources.
func (e *Engine) ListResources() []mcp.Resource {
	var out []mcp.Resource
	for _, r := range e.reg.Resources() {
		if !r.IsTemplate() {
			out = append(out, r.Resource())
		}
	}
	return out
}

// ListResourceTemplates returns listing entries for templated resources.
func (e *Engine) ListResourceTemplates() []mcp.ResourceTemplate {
	var out []mcp.ResourceTemplate
	for _, r := range e.reg.Resources() {
		if r.IsTemplate() {
			out = append(out, r.Template())
		}
	}
	return out
}
