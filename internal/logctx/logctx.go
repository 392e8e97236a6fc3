// Package logctx provides an slog.Handler that enriches records with request
// scoped attributes carried on the context: the serving backend, the JSON-RPC
// message and the tool being executed.
package logctx

import (
	"context"
	"log/slog"
)

// Handler adds a group per context value present on the record's context.
type Handler struct {
	slog.Handler
}

// Wrap returns a logger whose handler enriches records from context. A nil
// logger wraps slog.Default(). Wrapping an already wrapped logger is a no-op.
func Wrap(l *slog.Logger) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	if _, ok := l.Handler().(Handler); ok {
		return l
	}
	return slog.New(Handler{Handler: l.Handler()})
}

type key int

const (
	backendKey key = iota
	rpcKey
	toolKey
)

// groups are emitted in this order.
var keys = [...]key{backendKey, rpcKey, toolKey}

type grouper interface {
	group() slog.Attr
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	for _, k := range keys {
		if g, ok := ctx.Value(k).(grouper); ok {
			r.AddAttrs(g.group())
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

func with[T grouper](ctx context.Context, k key, v *T) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, k, *v)
}

// BackendData identifies the backend and server name handling a connection.
type BackendData struct {
	Kind   string
	Server string
}

func (d BackendData) group() slog.Attr {
	return slog.Group("backend", slog.String("kind", d.Kind), slog.String("server", d.Server))
}

func WithBackendData(ctx context.Context, d *BackendData) context.Context {
	return with(ctx, backendKey, d)
}

type RPCMessage struct {
	Method string
	ID     string
	Type   string
}

func (m RPCMessage) group() slog.Attr {
	return slog.Group("rpc", slog.String("method", m.Method), slog.String("id", m.ID), slog.String("type", m.Type))
}

func WithRPCMessage(ctx context.Context, m *RPCMessage) context.Context {
	return with(ctx, rpcKey, m)
}

type ToolCallData struct {
	ToolName string
	Async    bool
}

func (d ToolCallData) group() slog.Attr {
	return slog.Group("tool", slog.String("name", d.ToolName), slog.Bool("async", d.Async))
}

func WithToolCallData(ctx context.Context, d *ToolCallData) context.Context {
	return with(ctx, toolKey, d)
}
