package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/schema"
)

// Handler is the uniform shape every tool callable is adapted to.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// ToolRegistration describes a registered tool. It is immutable once built.
type ToolRegistration struct {
	name        string
	description string
	contract    schema.Contract
	async       bool
	handler     Handler
}

func (t *ToolRegistration) Name() string              { return t.name }
func (t *ToolRegistration) Description() string       { return t.description }
func (t *ToolRegistration) Contract() schema.Contract { return t.contract }
func (t *ToolRegistration) Async() bool               { return t.async }

// Invoke calls the tool's callable directly, without validation.
func (t *ToolRegistration) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	return t.handler(ctx, args)
}

// Descriptor returns the MCP listing entry for the tool.
func (t *ToolRegistration) Descriptor() mcp.Tool {
	return mcp.Tool{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.contract.InputSchema(),
	}
}

// ToolOption configures a ToolRegistration.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description string
	async       *bool
	contract    *schema.Contract
}

// WithDescription sets the tool description used in listings.
func WithDescription(desc string) ToolOption {
	return func(c *toolConfig) { c.description = desc }
}

// WithAsync overrides whether the engine awaits the tool on its own goroutine.
func WithAsync(async bool) ToolOption {
	return func(c *toolConfig) { c.async = &async }
}

// WithContract replaces the inferred parameter contract.
func WithContract(contract schema.Contract) ToolOption {
	return func(c *toolConfig) { c.contract = &contract }
}

// NewTool registers an asynchronous tool. fn receives the call's context and
// decoded arguments. An empty name falls back to fn's identifier.
func NewTool[A, R any](name string, fn func(ctx context.Context, args A) (R, error), opts ...ToolOption) *ToolRegistration {
	if fn == nil {
		panic("registry: nil tool function")
	}
	h := func(ctx context.Context, raw map[string]any) (any, error) {
		a, err := decodeArgs[A](raw)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a)
	}
	return build(name, fn, schema.Infer[A](), true, h, opts)
}

// NewSyncTool registers a synchronous tool.
func NewSyncTool[A, R any](name string, fn func(args A) (R, error), opts ...ToolOption) *ToolRegistration {
	if fn == nil {
		panic("registry: nil tool function")
	}
	h := func(_ context.Context, raw map[string]any) (any, error) {
		a, err := decodeArgs[A](raw)
		if err != nil {
			return nil, err
		}
		return fn(a)
	}
	return build(name, fn, schema.Infer[A](), false, h, opts)
}

// NewRawTool registers a tool with an explicitly declared contract. The
// handler receives the validated argument map as-is. Raw tools are
// synchronous unless WithAsync(true) is given.
func NewRawTool(name string, contract schema.Contract, fn Handler, opts ...ToolOption) *ToolRegistration {
	if fn == nil {
		panic("registry: nil tool function")
	}
	return build(name, fn, contract, false, fn, opts)
}

func build(name string, fn any, contract schema.Contract, async bool, h Handler, opts []ToolOption) *ToolRegistration {
	var cfg toolConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if name == "" {
		name = funcName(fn)
	}
	if name == "" {
		panic("registry: tool name could not be determined")
	}
	if cfg.contract != nil {
		contract = *cfg.contract
	}
	if cfg.async != nil {
		async = *cfg.async
	}
	desc := cfg.description
	if desc == "" {
		desc = contract.Description
	}
	if desc == "" {
		desc = "Tool: " + name
	}
	return &ToolRegistration{
		name:        name,
		description: desc,
		contract:    contract,
		async:       async,
		handler:     h,
	}
}

// funcName returns the bare identifier of a named function. Closures yield
// their compiler-generated name.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	full := f.Name()
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return full
}

func decodeArgs[A any](raw map[string]any) (A, error) {
	var a A
	if len(raw) == 0 {
		return a, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return a, mcperr.Validation(fmt.Sprintf("invalid arguments: %v", err), "", "")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&a); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			e := mcperr.Validation(fmt.Sprintf("invalid arguments: %v", err), te.Field, te.Type.String())
			return a, e.WithCause(err)
		}
		return a, mcperr.Validation(fmt.Sprintf("invalid arguments: %v", err), "", "").WithCause(err)
	}
	return a, nil
}
