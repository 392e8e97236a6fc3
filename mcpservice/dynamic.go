package mcpservice

import (
	"context"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

// ListToolsFunc returns a page of tools for the session.
type ListToolsFunc func(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.Tool], error)

// CallToolFunc executes a tool invocation. Tool failures belong in the
// result; a returned error becomes a JSON-RPC error.
type CallToolFunc func(ctx context.Context, session sessions.Session, req *mcp.CallToolRequestReceived) (*mcp.CallToolResult, error)

// ListResourcesFunc returns a page of concrete resources.
type ListResourcesFunc func(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.Resource], error)

// ListResourceTemplatesFunc returns a page of resource templates.
type ListResourceTemplatesFunc func(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.ResourceTemplate], error)

// ReadResourceFunc renders the contents behind uri.
type ReadResourceFunc func(ctx context.Context, session sessions.Session, uri string) ([]mcp.ResourceContents, error)

// DynamicToolsOption configures NewDynamicTools.
type DynamicToolsOption func(*dynamicTools)

// WithToolsListFn sets the listing function.
func WithToolsListFn(fn ListToolsFunc) DynamicToolsOption {
	return func(d *dynamicTools) { d.list = fn }
}

// WithToolsCallFn sets the call function.
func WithToolsCallFn(fn CallToolFunc) DynamicToolsOption {
	return func(d *dynamicTools) { d.call = fn }
}

// WithToolsChangeSubscriber enables tools/list_changed notifications.
func WithToolsChangeSubscriber(sub ChangeSubscriber) DynamicToolsOption {
	return func(d *dynamicTools) { d.changes = sub }
}

// DynamicResourcesOption configures NewDynamicResources.
type DynamicResourcesOption func(*dynamicResources)

func WithResourcesListFunc(fn ListResourcesFunc) DynamicResourcesOption {
	return func(d *dynamicResources) { d.list = fn }
}

func WithResourcesListTemplatesFunc(fn ListResourceTemplatesFunc) DynamicResourcesOption {
	return func(d *dynamicResources) { d.templates = fn }
}

func WithResourcesReadFunc(fn ReadResourceFunc) DynamicResourcesOption {
	return func(d *dynamicResources) { d.read = fn }
}

// WithResourcesChangeSubscriber enables resources/list_changed notifications.
func WithResourcesChangeSubscriber(sub ChangeSubscriber) DynamicResourcesOption {
	return func(d *dynamicResources) { d.changes = sub }
}

// NewDynamicTools builds a tools capability from functions. Without a list
// function the catalogue is empty; without a call function every call fails
// with TOOL_NOT_FOUND.
func NewDynamicTools(opts ...DynamicToolsOption) ToolsCapability {
	d := &dynamicTools{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDynamicResources builds a resources capability from functions. Without
// a read function every read fails with RESOURCE_NOT_FOUND.
func NewDynamicResources(opts ...DynamicResourcesOption) ResourcesCapability {
	d := &dynamicResources{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type dynamicTools struct {
	list    ListToolsFunc
	call    CallToolFunc
	changes ChangeSubscriber
}

func (d *dynamicTools) ListTools(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.Tool], error) {
	if d.list == nil {
		return NewPage[mcp.Tool](nil), nil
	}
	return d.list(ctx, session, cursor)
}

func (d *dynamicTools) CallTool(ctx context.Context, session sessions.Session, req *mcp.CallToolRequestReceived) (*mcp.CallToolResult, error) {
	if req == nil || req.Name == "" {
		return nil, mcperr.MissingParameter("name")
	}
	if d.call == nil {
		return nil, mcperr.ToolNotFound(req.Name)
	}
	return d.call(ctx, session, req)
}

func (d *dynamicTools) GetListChangedCapability(ctx context.Context, session sessions.Session) (ToolListChangedCapability, bool, error) {
	if d.changes == nil {
		return nil, false, nil
	}
	return toolsChanged{d.changes}, true, nil
}

type dynamicResources struct {
	list      ListResourcesFunc
	templates ListResourceTemplatesFunc
	read      ReadResourceFunc
	changes   ChangeSubscriber
}

func (d *dynamicResources) ListResources(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.Resource], error) {
	if d.list == nil {
		return NewPage[mcp.Resource](nil), nil
	}
	return d.list(ctx, session, cursor)
}

func (d *dynamicResources) ListResourceTemplates(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.ResourceTemplate], error) {
	if d.templates == nil {
		return NewPage[mcp.ResourceTemplate](nil), nil
	}
	return d.templates(ctx, session, cursor)
}

func (d *dynamicResources) ReadResource(ctx context.Context, session sessions.Session, uri string) ([]mcp.ResourceContents, error) {
	if d.read == nil {
		return nil, mcperr.ResourceNotFound(uri)
	}
	return d.read(ctx, session, uri)
}

func (d *dynamicResources) GetListChangedCapability(ctx context.Context, session sessions.Session) (ResourceListChangedCapability, bool, error) {
	if d.changes == nil {
		return nil, false, nil
	}
	return resourcesChanged{d.changes}, true, nil
}

type toolsChanged struct{ sub ChangeSubscriber }

func (t toolsChanged) Register(ctx context.Context, session sessions.Session, fn NotifyToolsListChangedFunc) (bool, error) {
	if fn == nil {
		return false, nil
	}
	forward(ctx, t.sub, func(ctx context.Context) { fn(ctx, session) })
	return true, nil
}

type resourcesChanged struct{ sub ChangeSubscriber }

func (r resourcesChanged) Register(ctx context.Context, session sessions.Session, fn NotifyResourceChangeFunc) (bool, error) {
	if fn == nil {
		return false, nil
	}
	forward(ctx, r.sub, func(ctx context.Context) { fn(ctx, session, "") })
	return true, nil
}

// forward calls fn for every signal on a fresh subscription until ctx is done
// or the subscription closes.
func forward(ctx context.Context, sub ChangeSubscriber, fn func(context.Context)) {
	ch := sub.Subscriber()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				fn(ctx)
			}
		}
	}()
}
