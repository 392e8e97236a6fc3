// Package mcptoolkit registers tools and resources once and serves them over
// either of two interchangeable backends.
//
// The "sdk" backend hands the registrations to the official MCP Go SDK,
// which owns parsing, dispatch and transport. The "stdio" backend serves them
// through the toolkit's own stdio transport with exactly two tool handlers
// that route every call through the execution engine.
//
//	srv, err := mcptoolkit.New(mcptoolkit.BackendAuto, "calculator")
//	if err != nil {
//		log.Fatal(err)
//	}
//	srv.RegisterTool(registry.NewSyncTool("add", add))
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package mcptoolkit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ggoodman/mcp-toolkit-go/backend"
	"github.com/ggoodman/mcp-toolkit-go/dispatch"
	"github.com/ggoodman/mcp-toolkit-go/passthrough"
	"github.com/ggoodman/mcp-toolkit-go/registry"
)

// ErrBackendUnavailable is returned by New when the requested backend kind is
// unknown or no registered backend can serve it.
var ErrBackendUnavailable = errors.New("mcptoolkit: backend unavailable")

// Backend kinds accepted by New.
const (
	BackendAuto  = "auto"
	BackendSDK   = "sdk"
	BackendStdio = "stdio"
)

// Server is the contract shared by every backend.
type Server interface {
	RegisterTool(t *registry.ToolRegistration)
	RegisterResource(r *registry.ResourceRegistration)
	Run(ctx context.Context) error
	Registry() *registry.Registry
}

// Factory constructs a backend.
type Factory func(name string, opts ...backend.Option) Server

var (
	backendsMu sync.RWMutex
	backends   = map[string]Factory{
		BackendSDK:   func(name string, opts ...backend.Option) Server { return passthrough.New(name, opts...) },
		BackendStdio: func(name string, opts ...backend.Option) Server { return dispatch.New(name, opts...) },
	}
	autoOrder = []string{BackendSDK, BackendStdio}
)

// Register makes a backend available under kind, replacing any existing
// registration. Registering under "auto" is not allowed.
func Register(kind string, f Factory) error {
	if kind == "" || kind == BackendAuto {
		return fmt.Errorf("mcptoolkit: invalid backend kind %q", kind)
	}
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if f == nil {
		delete(backends, kind)
		return nil
	}
	backends[kind] = f
	return nil
}

// Backends lists the available backend kinds in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New constructs a server of the given kind. BackendAuto picks the SDK
// backend when available and falls back to stdio. Options that fail
// validation, such as an auth provider without credentials, are reported
// before any backend is built.
func New(kind, name string, opts ...backend.Option) (Server, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	if err := backend.Apply(opts...).Validate(); err != nil {
		return nil, fmt.Errorf("mcptoolkit: %w", err)
	}
	if kind == "" || kind == BackendAuto {
		for _, k := range autoOrder {
			if f, ok := backends[k]; ok {
				return f(name, opts...), nil
			}
		}
		return nil, fmt.Errorf("%w: no backend registered", ErrBackendUnavailable)
	}
	f, ok := backends[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, kind)
	}
	return f(name, opts...), nil
}

// Option re-exports backend.Option so callers need not import the backend
// package for common configuration.
type Option = backend.Option

var (
	WithLogger        = backend.WithLogger
	WithLevelVar      = backend.WithLevelVar
	WithErrorHandler  = backend.WithErrorHandler
	WithVerbose       = backend.WithVerbose
	WithConfig        = backend.WithConfig
	WithVersion       = backend.WithVersion
	WithInstructions  = backend.WithInstructions
	WithEngineOptions = backend.WithEngineOptions
	WithAuth          = backend.WithAuth
)
