package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ggoodman/mcp-toolkit-go/auth"
	"github.com/ggoodman/mcp-toolkit-go/internal/logctx"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/registry"
	"github.com/ggoodman/mcp-toolkit-go/schema"
)

const instrumentationName = "github.com/ggoodman/mcp-toolkit-go/engine"

// Engine resolves, validates and invokes tools held by a Registry.
type Engine struct {
	reg     *registry.Registry
	handler *mcperr.Handler
	log     *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	auth    auth.Provider

	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

// Option configures an Engine.
type Option func(*Engine)

// WithErrorHandler sets the handler CallTool uses to build error results.
func WithErrorHandler(h *mcperr.Handler) Option {
	return func(e *Engine) {
		if h != nil {
			e.handler = h
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTracer overrides the tracer. Defaults to the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMeter overrides the meter. Defaults to the global provider's meter.
func WithMeter(m metric.Meter) Option {
	return func(e *Engine) {
		if m != nil {
			e.meter = m
		}
	}
}

// WithAuth hands p to every tool invocation through auth.NewContext.
func WithAuth(p auth.Provider) Option {
	return func(e *Engine) { e.auth = p }
}

// New constructs an Engine over reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = registry.New()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.log = logctx.Wrap(e.log)
	if e.handler == nil {
		e.handler = mcperr.NewHandler(mcperr.WithLogger(e.log))
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(instrumentationName)
	}
	if e.meter == nil {
		e.meter = otel.Meter(instrumentationName)
	}

	var err error
	e.invocations, err = e.meter.Int64Counter(
		"mcp.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		e.log.Warn("engine.metrics.counter", slog.String("err", err.Error()))
	}
	e.latency, err = e.meter.Float64Histogram(
		"mcp.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		e.log.Warn("engine.metrics.histogram", slog.String("err", err.Error()))
	}
	return e
}

// Registry returns the registry the engine executes against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// ErrorHandler returns the handler used to convert failures.
func (e *Engine) ErrorHandler() *mcperr.Handler { return e.handler }

// Execute runs the named tool with args. Lookup failures yield
// TOOL_NOT_FOUND, validation failures pass through unchanged, and failures
// raised by the tool that are not *mcperr.Error are wrapped as
// TOOL_EXECUTION_FAILED. Successful results are coerced with Coerce.
func (e *Engine) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, span := e.tracer.Start(ctx, "tool.execute", trace.WithAttributes(
		attribute.String("tool_name", name),
	))
	defer span.End()
	start := time.Now()

	res, async, err := e.execute(ctx, name, args)

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", name),
		attribute.Bool("async", async),
		attribute.Bool("success", err == nil),
	}
	if err != nil {
		code := string(mcperr.KindOf(err))
		attrs = append(attrs, attribute.String("error_code", code))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attrs...)
	if e.invocations != nil {
		e.invocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if e.latency != nil {
		e.latency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	}
	return res, err
}

func (e *Engine) execute(ctx context.Context, name string, args map[string]any) (any, bool, error) {
	tool, ok := e.reg.Tool(name)
	if !ok {
		e.log.WarnContext(ctx, "engine.tool.not_found", slog.String("tool", name))
		return nil, false, mcperr.ToolNotFound(name)
	}
	ctx = logctx.WithToolCallData(ctx, &logctx.ToolCallData{ToolName: name, Async: tool.Async()})
	ctx = auth.NewContext(ctx, e.auth)

	if args == nil {
		args = map[string]any{}
	}
	if err := schema.Validate(tool.Contract(), args); err != nil {
		e.log.DebugContext(ctx, "engine.tool.invalid", slog.String("err", err.Error()))
		return nil, tool.Async(), err
	}

	var (
		res any
		err error
	)
	if tool.Async() {
		res, err = e.await(ctx, tool, args)
	} else {
		res, err = invoke(ctx, tool, args)
	}
	if err != nil {
		err = classify(name, err)
		e.log.InfoContext(ctx, "engine.tool.failed", slog.String("err", err.Error()))
		return nil, tool.Async(), err
	}
	e.log.DebugContext(ctx, "engine.tool.ok")
	return Coerce(res), tool.Async(), nil
}

type outcome struct {
	res any
	err error
}

// await runs an asynchronous tool on its own goroutine. If ctx ends first the
// call returns ctx's error; the tool keeps its context and is expected to
// observe the cancellation itself.
func (e *Engine) await(ctx context.Context, tool *registry.ToolRegistration, args map[string]any) (any, error) {
	done := make(chan outcome, 1)
	go func() {
		res, err := invoke(ctx, tool, args)
		done <- outcome{res: res, err: err}
	}()
	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// classify maps a tool failure onto the taxonomy. Typed errors pass through.
func classify(name string, err error) error {
	if _, typed := mcperr.As(err); typed {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return mcperr.Wrap(mcperr.KindToolTimeout, err, fmt.Sprintf("Tool '%s' timed out", name))
	case errors.Is(err, context.Canceled):
		return mcperr.Wrap(mcperr.KindInvalidRequest, err, fmt.Sprintf("Tool '%s' call cancelled", name))
	}
	return mcperr.ExecutionFailed(name, err)
}

func invoke(ctx context.Context, tool *registry.ToolRegistration, args map[string]any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return tool.Invoke(ctx, args)
}

type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v\n%s", p.value, p.stack) }
