// Package dispatch serves registered tools and resources over the toolkit's
// own stdio transport.
//
// The adapter installs exactly two tool handlers on an mcpservice server: a
// list handler backed by engine.ListTools and a call handler backed by
// engine.CallTool. Resources are listed and read through the same engine.
// Every registered tool is therefore reachable through one call path, and
// errors reach the client as engine error results.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/ggoodman/mcp-toolkit-go/backend"
	"github.com/ggoodman/mcp-toolkit-go/engine"
	"github.com/ggoodman/mcp-toolkit-go/internal/logctx"
	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcpservice"
	"github.com/ggoodman/mcp-toolkit-go/registry"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
	"github.com/ggoodman/mcp-toolkit-go/stdio"
)

// Server is the explicit-dispatch adapter.
type Server struct {
	name string
	opts backend.Options
	reg  *registry.Registry
	eng  *engine.Engine
	life backend.Lifecycle

	pageSize int
}

// New constructs an adapter that will report itself to clients as name.
func New(name string, opts ...backend.Option) *Server {
	o := backend.Apply(opts...)
	reg := registry.New()
	return &Server{
		name:     name,
		opts:     o,
		reg:      reg,
		eng:      o.NewEngine(reg),
		pageSize: intValue(o.Config.Get("page_size", 0)),
	}
}

// intValue accepts the numeric shapes config sources produce.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Options returns the resolved construction options.
func (s *Server) Options() backend.Options { return s.opts }

// Registry returns the adapter's registry.
func (s *Server) Registry() *registry.Registry { return s.reg }

// Engine returns the engine both handlers delegate to.
func (s *Server) Engine() *engine.Engine { return s.eng }

// State reports whether Run has been called.
func (s *Server) State() backend.State { return s.life.State() }

// RegisterTool records t. Tools registered while running are announced to
// the client with a tools/list_changed notification.
func (s *Server) RegisterTool(t *registry.ToolRegistration) { s.reg.AddTool(t) }

// RegisterResource records r.
func (s *Server) RegisterResource(r *registry.ResourceRegistration) { s.reg.AddResource(r) }

// Run serves over the process's stdin and stdout.
func (s *Server) Run(ctx context.Context) error { return s.Serve(ctx) }

// Serve starts the stdio handler with opts and blocks until the peer closes
// its input or ctx is done. Only the first call serves; later calls return
// nil immediately.
func (s *Server) Serve(ctx context.Context, opts ...stdio.Option) error {
	if !s.life.Start() {
		s.opts.Logger.DebugContext(ctx, "dispatch.run.ignored", slog.String("server", s.name))
		return nil
	}
	ctx = logctx.WithBackendData(ctx, &logctx.BackendData{Kind: "stdio", Server: s.name})
	s.opts.Logger.InfoContext(ctx, "dispatch.run",
		slog.String("server", s.name),
		slog.Int("tools", s.reg.ToolCount()),
		slog.Int("resources", s.reg.ResourceCount()),
	)
	h := stdio.NewHandler(s.Capabilities(), append([]stdio.Option{stdio.WithLogger(s.opts.Logger)}, opts...)...)
	return h.Serve(ctx)
}

// Capabilities builds the mcpservice server the stdio handler routes to.
func (s *Server) Capabilities() mcpservice.ServerCapabilities {
	sopts := []mcpservice.ServerOption{
		mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: s.name, Version: s.opts.Version}),
		mcpservice.WithInstructions(s.opts.Instructions),
		mcpservice.WithToolsCapability(mcpservice.NewDynamicTools(
			mcpservice.WithToolsListFn(s.listTools),
			mcpservice.WithToolsCallFn(s.callTool),
			mcpservice.WithToolsChangeSubscriber(s.reg.ToolsChanged()),
		)),
		mcpservice.WithResourcesCapability(mcpservice.NewDynamicResources(
			mcpservice.WithResourcesListFunc(s.listResources),
			mcpservice.WithResourcesListTemplatesFunc(s.listResourceTemplates),
			mcpservice.WithResourcesReadFunc(s.readResource),
			mcpservice.WithResourcesChangeSubscriber(s.reg.ResourcesChanged()),
		)),
	}
	if s.opts.LevelVar != nil {
		sopts = append(sopts, mcpservice.WithLoggingCapability(mcpservice.NewSlogLevelVarLogging(s.opts.LevelVar)))
	}
	return mcpservice.NewServer(sopts...)
}

func (s *Server) listTools(ctx context.Context, _ sessions.Session, cursor *string) (mcpservice.Page[mcp.Tool], error) {
	return mcpservice.Paginate(s.eng.ListTools(), cursor, s.pageSize), nil
}

func (s *Server) callTool(ctx context.Context, _ sessions.Session, req *mcp.CallToolRequestReceived) (*mcp.CallToolResult, error) {
	args, err := engine.DecodeArguments(req.Arguments)
	if err != nil {
		return s.eng.ErrorResult(ctx, err), nil
	}
	return s.eng.CallTool(ctx, req.Name, args), nil
}

func (s *Server) listResources(ctx context.Context, _ sessions.Session, cursor *string) (mcpservice.Page[mcp.Resource], error) {
	return mcpservice.Paginate(s.eng.ListResources(), cursor, s.pageSize), nil
}

func (s *Server) listResourceTemplates(ctx context.Context, _ sessions.Session, cursor *string) (mcpservice.Page[mcp.ResourceTemplate], error) {
	return mcpservice.Paginate(s.eng.ListResourceTemplates(), cursor, s.pageSize), nil
}

func (s *Server) readResource(ctx context.Context, _ sessions.Session, uri string) ([]mcp.ResourceContents, error) {
	return s.eng.ReadResourceContents(ctx, uri)
}
