// Package passthrough serves registered tools and resources through the
// official MCP Go SDK (github.com/modelcontextprotocol/go-sdk).
//
// Registration only records into the adapter's Registry. The SDK server is
// constructed on the first Run, at which point every recorded tool and
// resource is replayed onto it; from then on the SDK owns request parsing,
// dispatch and transport. Registrations made after Run are forwarded to the
// live SDK server, which announces them to connected clients.
package passthrough

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ggoodman/mcp-toolkit-go/backend"
	"github.com/ggoodman/mcp-toolkit-go/engine"
	"github.com/ggoodman/mcp-toolkit-go/internal/logctx"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/registry"
)

// Server is the pass-through adapter.
type Server struct {
	name string
	opts backend.Options
	reg  *registry.Registry
	eng  *engine.Engine
	life backend.Lifecycle

	mu  sync.Mutex
	sdk *mcp.Server
}

// New constructs an adapter that will report itself to clients as name.
func New(name string, opts ...backend.Option) *Server {
	o := backend.Apply(opts...)
	reg := registry.New()
	return &Server{
		name: name,
		opts: o,
		reg:  reg,
		eng:  o.NewEngine(reg),
	}
}

// Options returns the resolved construction options.
func (s *Server) Options() backend.Options { return s.opts }

// Registry returns the adapter's registry.
func (s *Server) Registry() *registry.Registry { return s.reg }

// Engine returns the engine tool calls are executed through.
func (s *Server) Engine() *engine.Engine { return s.eng }

// State reports whether Run has been called.
func (s *Server) State() backend.State { return s.life.State() }

// RegisterTool records t, forwarding it to the SDK server once running.
func (s *Server) RegisterTool(t *registry.ToolRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.AddTool(t)
	if s.sdk != nil {
		s.addTool(s.sdk, t)
	}
}

// RegisterResource records r, forwarding it to the SDK server once running.
func (s *Server) RegisterResource(r *registry.ResourceRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.AddResource(r)
	if s.sdk != nil {
		s.addResource(s.sdk, r)
	}
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves over t. Only the first call constructs the SDK server
// and serves; later calls return nil immediately.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	if !s.life.Start() {
		s.opts.Logger.DebugContext(ctx, "passthrough.run.ignored", slog.String("server", s.name))
		return nil
	}
	ctx = logctx.WithBackendData(ctx, &logctx.BackendData{Kind: "sdk", Server: s.name})
	srv := s.build()
	s.opts.Logger.InfoContext(ctx, "passthrough.run",
		slog.String("server", s.name),
		slog.Int("tools", s.reg.ToolCount()),
		slog.Int("resources", s.reg.ResourceCount()),
	)
	return srv.Run(ctx, t)
}

func (s *Server) build() *mcp.Server {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sopts *mcp.ServerOptions
	if s.opts.Instructions != "" {
		sopts = &mcp.ServerOptions{Instructions: s.opts.Instructions}
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.opts.Version}, sopts)
	for _, t := range s.reg.Tools() {
		s.addTool(srv, t)
	}
	for _, r := range s.reg.Resources() {
		s.addResource(srv, r)
	}
	s.sdk = srv
	return srv
}

func (s *Server) addTool(srv *mcp.Server, t *registry.ToolRegistration) {
	name := t.Name()
	srv.AddTool(&mcp.Tool{
		Name:        name,
		Description: t.Description(),
		InputSchema: t.Contract().JSONSchema(),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := engine.DecodeArguments(req.Params.Arguments)
		if err != nil {
			return toResult(s.eng.ErrorResult(ctx, err)), nil
		}
		return toResult(s.eng.CallTool(ctx, name, args)), nil
	})
}

func (s *Server) addResource(srv *mcp.Server, r *registry.ResourceRegistration) {
	if r.IsTemplate() {
		srv.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: r.Pattern(),
			Name:        r.Name(),
			Description: r.Description(),
			MIMEType:    r.MIMEType(),
		}, s.readResource)
		return
	}
	srv.AddResource(&mcp.Resource{
		URI:         r.Pattern(),
		Name:        r.Name(),
		Description: r.Description(),
		MIMEType:    r.MIMEType(),
	}, s.readResource)
}

func (s *Server) readResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	contents, err := s.eng.ReadResourceContents(ctx, uri)
	if err != nil {
		if mcperr.IsKind(err, mcperr.KindResourceNotFound) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, errors.New(s.eng.ErrorHandler().HandleContext(ctx, err).Text())
	}
	out := &mcp.ReadResourceResult{}
	for _, c := range contents {
		rc := &mcp.ResourceContents{URI: c.URI, MIMEType: c.MimeType, Text: c.Text}
		if c.Blob != "" {
			b, err := base64.StdEncoding.DecodeString(c.Blob)
			if err != nil {
				return nil, err
			}
			rc.Blob = b
		}
		out.Contents = append(out.Contents, rc)
	}
	return out, nil
}
