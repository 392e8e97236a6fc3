// Package backend holds what the pass-through and explicit-dispatch adapters
// share: their construction options and their one-way run state.
package backend

import (
	"log/slog"
	"sync/atomic"

	"github.com/ggoodman/mcp-toolkit-go/auth"
	"github.com/ggoodman/mcp-toolkit-go/config"
	"github.com/ggoodman/mcp-toolkit-go/engine"
	"github.com/ggoodman/mcp-toolkit-go/internal/logctx"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/registry"
)

// DefaultVersion is reported when neither an option nor configuration names
// a version.
const DefaultVersion = "1.0.0"

// Options configures an adapter.
type Options struct {
	Logger        *slog.Logger
	LevelVar      *slog.LevelVar
	ErrorHandler  *mcperr.Handler
	Verbose       bool
	Config        config.Getter
	Version       string
	Instructions  string
	Auth          auth.Provider
	EngineOptions []engine.Option
}

// Option configures an adapter.
type Option func(*Options)

// WithLogger sets the adapter's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithLevelVar exposes the MCP logging capability, letting clients adjust lv.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(o *Options) { o.LevelVar = lv }
}

// WithErrorHandler replaces the error handler. WithVerbose is ignored when a
// handler is supplied.
func WithErrorHandler(h *mcperr.Handler) Option {
	return func(o *Options) { o.ErrorHandler = h }
}

// WithVerbose attaches stack traces and causes to error responses.
func WithVerbose(verbose bool) Option {
	return func(o *Options) { o.Verbose = verbose }
}

// WithConfig hands the adapter a configuration view. The keys "version",
// "instructions" and "verbose_errors" fill options left unset.
func WithConfig(g config.Getter) Option {
	return func(o *Options) { o.Config = g }
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithInstructions sets the instructions reported to clients on initialize.
func WithInstructions(s string) Option {
	return func(o *Options) { o.Instructions = s }
}

// WithAuth sets the credential provider tools reach through
// auth.FromContext. Factory construction fails when it does not validate.
func WithAuth(p auth.Provider) Option {
	return func(o *Options) { o.Auth = p }
}

// WithEngineOptions passes options through to the execution engine, such as
// a tracer or meter.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *Options) { o.EngineOptions = append(o.EngineOptions, opts...) }
}

// Apply resolves opts and fills defaults from the configuration view.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.Logger = logctx.Wrap(o.Logger)
	if o.Config == nil {
		o.Config = config.Map{}
	}
	if o.Version == "" {
		o.Version = stringValue(o.Config.Get("version", nil), DefaultVersion)
	}
	if o.Instructions == "" {
		o.Instructions = stringValue(o.Config.Get("instructions", nil), "")
	}
	if !o.Verbose {
		if v, ok := o.Config.Get("verbose_errors", false).(bool); ok {
			o.Verbose = v
		}
	}
	if o.ErrorHandler == nil {
		o.ErrorHandler = mcperr.NewHandler(mcperr.WithVerbose(o.Verbose), mcperr.WithLogger(o.Logger))
	}
	return o
}

// Validate reports startup conditions that must stop the server, currently
// an auth provider whose credentials are missing or expired.
func (o Options) Validate() error {
	if o.Auth == nil {
		return nil
	}
	return o.Auth.Validate()
}

// NewEngine builds the execution engine an adapter dispatches through.
func (o Options) NewEngine(reg *registry.Registry) *engine.Engine {
	opts := append([]engine.Option{
		engine.WithErrorHandler(o.ErrorHandler),
		engine.WithLogger(o.Logger),
		engine.WithAuth(o.Auth),
	}, o.EngineOptions...)
	return engine.New(reg, opts...)
}

func stringValue(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// State is an adapter's lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "uninitialized"
}

// Lifecycle guards the one-way transition into StateRunning. The zero value
// is uninitialized.
type Lifecycle struct {
	state atomic.Int32
}

// Start moves to StateRunning and reports whether this call made the
// transition.
func (l *Lifecycle) Start() bool {
	return l.state.CompareAndSwap(int32(StateUninitialized), int32(StateRunning))
}

// State reports the current state.
func (l *Lifecycle) State() State { return State(l.state.Load()) }
