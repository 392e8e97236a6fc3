package mcpservice

import (
	"context"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

// ServerCapabilities is what a transport asks of a server while handling a
// session. Each Get*Capability reports ok=false for surfaces the server does
// not offer; the transport then answers the matching methods with
// method-not-found.
type ServerCapabilities interface {
	GetServerInfo(ctx context.Context, session sessions.Session) (mcp.ImplementationInfo, error)

	// GetPreferredProtocolVersion returns ok=false to let the transport accept
	// whichever supported version the client asked for.
	GetPreferredProtocolVersion(ctx context.Context) (version string, ok bool, err error)

	GetInstructions(ctx context.Context, session sessions.Session) (instructions string, ok bool, err error)
	GetResourcesCapability(ctx context.Context, session sessions.Session) (cap ResourcesCapability, ok bool, err error)
	GetToolsCapability(ctx context.Context, session sessions.Session) (cap ToolsCapability, ok bool, err error)
	GetLoggingCapability(ctx context.Context, session sessions.Session) (cap LoggingCapability, ok bool, err error)
}

// ResourcesCapability serves resources/list, resources/templates/list and
// resources/read. A nil cursor asks for the first page.
type ResourcesCapability interface {
	ListResources(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.Resource], error)
	ListResourceTemplates(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.ResourceTemplate], error)

	// ReadResource fails with an mcperr RESOURCE_NOT_FOUND error for URIs
	// nothing serves.
	ReadResource(ctx context.Context, session sessions.Session, uri string) ([]mcp.ResourceContents, error)

	GetListChangedCapability(ctx context.Context, session sessions.Session) (cap ResourceListChangedCapability, ok bool, err error)
}

// NotifyResourceChangeFunc signals a resource change; uri is empty when the
// whole list changed.
type NotifyResourceChangeFunc func(ctx context.Context, session sessions.Session, uri string)

// ResourceListChangedCapability delivers callbacks until ctx is done.
type ResourceListChangedCapability interface {
	Register(ctx context.Context, session sessions.Session, fn NotifyResourceChangeFunc) (ok bool, err error)
}

// ToolsCapability serves tools/list and tools/call.
type ToolsCapability interface {
	ListTools(ctx context.Context, session sessions.Session, cursor *string) (Page[mcp.Tool], error)

	// CallTool reports tool failures as results with IsError set. A returned
	// error becomes a protocol error.
	CallTool(ctx context.Context, session sessions.Session, req *mcp.CallToolRequestReceived) (*mcp.CallToolResult, error)

	GetListChangedCapability(ctx context.Context, session sessions.Session) (cap ToolListChangedCapability, ok bool, err error)
}

// NotifyToolsListChangedFunc may be called fewer times than the list changed;
// bursts are coalesced.
type NotifyToolsListChangedFunc func(ctx context.Context, session sessions.Session)

// ToolListChangedCapability delivers callbacks until ctx is done.
type ToolListChangedCapability interface {
	Register(ctx context.Context, session sessions.Session, fn NotifyToolsListChangedFunc) (ok bool, err error)
}

// LoggingCapability handles logging/setLevel.
type LoggingCapability interface {
	SetLevel(ctx context.Context, session sessions.Session, level mcp.LoggingLevel) error
}

// ChangeSubscriber hands out channels signalled on list changes.
// registry.ChangeNotifier satisfies it.
type ChangeSubscriber interface {
	Subscriber() <-chan struct{}
}
