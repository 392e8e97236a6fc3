package mcpservice

import (
	"context"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

// ServerOption configures the server returned by NewServer.
type ServerOption func(*server)

type server struct {
	info         mcp.ImplementationInfo
	version      string
	instructions string

	resources ResourcesCapability
	tools     ToolsCapability
	logging   LoggingCapability
}

// NewServer assembles ServerCapabilities from static values and the
// capabilities passed in opts. Capabilities left unset are not advertised.
func NewServer(opts ...ServerOption) ServerCapabilities {
	s := &server{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithServerInfo(info mcp.ImplementationInfo) ServerOption {
	return func(s *server) { s.info = info }
}

// WithPreferredProtocolVersion pins the version offered during initialize.
func WithPreferredProtocolVersion(version string) ServerOption {
	return func(s *server) { s.version = version }
}

func WithInstructions(instr string) ServerOption {
	return func(s *server) { s.instructions = instr }
}

func WithResourcesCapability(c ResourcesCapability) ServerOption {
	return func(s *server) { s.resources = c }
}

func WithToolsCapability(c ToolsCapability) ServerOption {
	return func(s *server) { s.tools = c }
}

func WithLoggingCapability(c LoggingCapability) ServerOption {
	return func(s *server) { s.logging = c }
}

// present reports a capability as available when it is non-nil.
func present[T comparable](v T) (T, bool, error) {
	var zero T
	return v, v != zero, nil
}

func (s *server) GetServerInfo(context.Context, sessions.Session) (mcp.ImplementationInfo, error) {
	return s.info, nil
}

func (s *server) GetPreferredProtocolVersion(context.Context) (string, bool, error) {
	return present(s.version)
}

func (s *server) GetInstructions(context.Context, sessions.Session) (string, bool, error) {
	return present(s.instructions)
}

func (s *server) GetResourcesCapability(context.Context, sessions.Session) (ResourcesCapability, bool, error) {
	return present(s.resources)
}

func (s *server) GetToolsCapability(context.Context, sessions.Session) (ToolsCapability, bool, error) {
	return present(s.tools)
}

func (s *server) GetLoggingCapability(context.Context, sessions.Session) (LoggingCapability, bool, error) {
	return present(s.logging)
}
