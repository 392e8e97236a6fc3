package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ggoodman/mcp-toolkit-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-toolkit-go/internal/logctx"
	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcpservice"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

// ErrAlreadyServed is returned by Serve when called more than once.
var ErrAlreadyServed = errors.New("stdio: handler already served")

const defaultMaxMessage = 4 << 20

// Handler is a single-connection stdio transport that reads JSON-RPC messages
// from an io.Reader and writes responses to an io.Writer. By default, it uses
// os.Stdin and os.Stdout. It identifies the peer using a UserProvider, which
// defaults to the current OS user.
//
// The handler is transport-only; it delegates all MCP semantics to the provided
// mcpservice.ServerCapabilities.
type Handler struct {
	srv          mcpservice.ServerCapabilities
	r            io.Reader
	w            io.Writer
	l            *slog.Logger
	userProvider UserProvider
	maxMessage   int

	served atomic.Bool

	wmu sync.Mutex

	connCtx context.Context

	mu       sync.Mutex
	sess     *session
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(srv mcpservice.ServerCapabilities, opts ...Option) *Handler {
	h := &Handler{
		srv:          srv,
		r:            os.Stdin,
		w:            os.Stdout,
		l:            slog.Default(),
		userProvider: OSUserProvider{},
		maxMessage:   defaultMaxMessage,
		inflight:     make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.l = logctx.Wrap(h.l)
	return h
}

// Serve runs the stdio event loop until EOF on the reader or the context is
// canceled. It returns nil at EOF, once every in-flight request has been
// answered, and ctx.Err() on cancellation, once every in-flight handler has
// returned. Serve may be called at most once.
func (h *Handler) Serve(ctx context.Context) error {
	if !h.served.CompareAndSwap(false, true) {
		return ErrAlreadyServed
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h.connCtx = ctx

	userID, err := h.userProvider.CurrentUserID()
	if err != nil {
		h.l.WarnContext(ctx, "stdio.user.lookup", slog.String("err", err.Error()))
		userID = "stdio"
	}
	h.mu.Lock()
	h.sess = &session{id: uuid.NewString(), userID: userID}
	h.mu.Unlock()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go h.readLoop(ctx, lines, readErr)

	for {
		select {
		case <-ctx.Done():
			// Request contexts derive from ctx, so in-flight handlers are
			// already cancelled; their late responses are dropped by write.
			h.wg.Wait()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				h.wg.Wait()
				err := <-readErr
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return err
			}
			h.dispatch(ctx, line)
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, out chan<- []byte, errc chan<- error) {
	defer close(out)
	sc := bufio.NewScanner(h.r)
	sc.Buffer(make([]byte, 0, 64*1024), h.maxMessage)
	for sc.Scan() {
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		line := make([]byte, len(b))
		copy(line, b)
		select {
		case out <- line:
		case <-ctx.Done():
			errc <- ctx.Err()
			return
		}
	}
	err := sc.Err()
	if errors.Is(err, io.ErrClosedPipe) {
		err = nil
	}
	errc <- err
}

func (h *Handler) dispatch(ctx context.Context, line []byte) {
	var msg jsonrpc.AnyMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		code := jsonrpc.ErrorCodeInvalidRequest
		text := "Invalid request"
		if !json.Valid(line) {
			code = jsonrpc.ErrorCodeParseError
			text = "Parse error"
		}
		h.l.DebugContext(ctx, "stdio.message.invalid", slog.String("err", err.Error()))
		h.write(ctx, jsonrpc.NewErrorResponse(jsonrpc.NewRequestID(nil), code, text, nil))
		return
	}

	switch msg.Type() {
	case "response":
		// This server never issues requests to the client.
		h.l.DebugContext(ctx, "stdio.response.ignored", slog.String("id", msg.ID.String()))
	case "notification":
		h.handleNotification(ctx, msg.AsRequest())
	case "request":
		req := msg.AsRequest()
		reqCtx, cancel := context.WithCancel(ctx)
		id := req.ID.String()
		h.mu.Lock()
		h.inflight[id] = cancel
		h.mu.Unlock()

		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			defer func() {
				h.mu.Lock()
				delete(h.inflight, id)
				h.mu.Unlock()
				cancel()
			}()
			reqCtx = logctx.WithRPCMessage(reqCtx, &logctx.RPCMessage{Method: req.Method, ID: id, Type: "request"})
			h.handleRequest(reqCtx, req)
		}()
	}
}

type cancelledParams struct {
	RequestID *jsonrpc.RequestID `json:"requestId"`
	Reason    string             `json:"reason,omitempty"`
}

func (h *Handler) handleNotification(ctx context.Context, n *jsonrpc.Request) {
	switch mcp.Method(n.Method) {
	case mcp.InitializedNotificationMethod:
		h.l.DebugContext(ctx, "stdio.initialized")
	case mcp.CancelledNotificationMethod:
		var p cancelledParams
		if err := json.Unmarshal(n.Params, &p); err != nil || p.RequestID.IsNil() {
			return
		}
		h.mu.Lock()
		cancel, ok := h.inflight[p.RequestID.String()]
		h.mu.Unlock()
		if ok {
			h.l.DebugContext(ctx, "stdio.request.cancelled", slog.String("id", p.RequestID.String()), slog.String("reason", p.Reason))
			cancel()
		}
	default:
		h.l.DebugContext(ctx, "stdio.notification.ignored", slog.String("method", n.Method))
	}
}

func (h *Handler) handleRequest(ctx context.Context, req *jsonrpc.Request) {
	res, rpcErr := h.route(ctx, req)
	if rpcErr != nil {
		h.write(ctx, &jsonrpc.Response{JSONRPCVersion: jsonrpc.ProtocolVersion, Error: rpcErr, ID: req.ID})
		return
	}
	resp, err := jsonrpc.NewResultResponse(req.ID, res)
	if err != nil {
		h.write(ctx, jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, err.Error(), nil))
		return
	}
	h.write(ctx, resp)
}

func (h *Handler) route(ctx context.Context, req *jsonrpc.Request) (any, *jsonrpc.Error) {
	sess := h.session()
	switch mcp.Method(req.Method) {
	case mcp.InitializeMethod:
		return h.initialize(ctx, sess, req.Params)
	case mcp.PingMethod:
		return mcp.EmptyResult{}, nil

	case mcp.ToolsListMethod:
		tools, rpcErr := h.tools(ctx, sess)
		if rpcErr != nil {
			return nil, rpcErr
		}
		var p mcp.ListToolsRequest
		if rpcErr := decodeParams(req.Params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		page, err := tools.ListTools(ctx, sess, cursorOf(p.Cursor))
		if err != nil {
			return nil, jsonrpc.FromError(err)
		}
		return mcp.ListToolsResult{Tools: nonNil(page.Items), PaginatedResult: nextCursor(page.NextCursor)}, nil

	case mcp.ToolsCallMethod:
		tools, rpcErr := h.tools(ctx, sess)
		if rpcErr != nil {
			return nil, rpcErr
		}
		var p mcp.CallToolRequestReceived
		if rpcErr := decodeParams(req.Params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if p.Name == "" {
			return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeInvalidParams, Message: "missing tool name"}
		}
		res, err := tools.CallTool(ctx, sess, &p)
		if err != nil {
			return nil, jsonrpc.FromError(err)
		}
		return res, nil

	case mcp.ResourcesListMethod:
		resources, rpcErr := h.resources(ctx, sess)
		if rpcErr != nil {
			return nil, rpcErr
		}
		var p mcp.ListResourcesRequest
		if rpcErr := decodeParams(req.Params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		page, err := resources.ListResources(ctx, sess, cursorOf(p.Cursor))
		if err != nil {
			return nil, jsonrpc.FromError(err)
		}
		return mcp.ListResourcesResult{Resources: nonNil(page.Items), PaginatedResult: nextCursor(page.NextCursor)}, nil

	case mcp.ResourcesTemplatesListMethod:
		resources, rpcErr := h.resources(ctx, sess)
		if rpcErr != nil {
			return nil, rpcErr
		}
		var p mcp.ListResourceTemplatesRequest
		if rpcErr := decodeParams(req.Params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		page, err := resources.ListResourceTemplates(ctx, sess, cursorOf(p.Cursor))
		if err != nil {
			return nil, jsonrpc.FromError(err)
		}
		return mcp.ListResourceTemplatesResult{ResourceTemplates: nonNil(page.Items), PaginatedResult: nextCursor(page.NextCursor)}, nil

	case mcp.ResourcesReadMethod:
		resources, rpcErr := h.resources(ctx, sess)
		if rpcErr != nil {
			return nil, rpcErr
		}
		var p mcp.ReadResourceRequest
		if rpcErr := decodeParams(req.Params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if p.URI == "" {
			return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeInvalidParams, Message: "missing uri"}
		}
		contents, err := resources.ReadResource(ctx, sess, p.URI)
		if err != nil {
			return nil, jsonrpc.FromError(err)
		}
		return mcp.ReadResourceResult{Contents: nonNil(contents)}, nil

	case mcp.LoggingSetLevelMethod:
		logging, ok, err := h.srv.GetLoggingCapability(ctx, sess)
		if err != nil {
			return nil, jsonrpc.FromError(err)
		}
		if !ok {
			return nil, methodNotFound(req.Method)
		}
		var p mcp.SetLevelRequest
		if rpcErr := decodeParams(req.Params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if err := logging.SetLevel(ctx, sess, p.Level); err != nil {
			return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeInvalidParams, Message: err.Error()}
		}
		return mcp.EmptyResult{}, nil
	}
	return nil, methodNotFound(req.Method)
}

func (h *Handler) initialize(ctx context.Context, sess *session, raw json.RawMessage) (any, *jsonrpc.Error) {
	var req mcp.InitializeRequest
	if rpcErr := decodeParams(raw, &req); rpcErr != nil {
		return nil, rpcErr
	}

	version := mcp.LatestProtocolVersion
	if pref, ok, err := h.srv.GetPreferredProtocolVersion(ctx); err != nil {
		return nil, jsonrpc.FromError(err)
	} else if ok {
		version = pref
	} else if mcp.IsSupportedProtocolVersion(req.ProtocolVersion) {
		version = req.ProtocolVersion
	}
	sess.negotiated(version, sessions.ClientInfo{Name: req.ClientInfo.Name, Version: req.ClientInfo.Version})

	info, err := h.srv.GetServerInfo(ctx, sess)
	if err != nil {
		return nil, jsonrpc.FromError(err)
	}
	res := mcp.InitializeResult{ProtocolVersion: version, ServerInfo: info}
	if instr, ok, err := h.srv.GetInstructions(ctx, sess); err != nil {
		return nil, jsonrpc.FromError(err)
	} else if ok {
		res.Instructions = instr
	}

	// Change subscriptions outlive this request.
	connCtx := h.connCtx
	if tools, ok, err := h.srv.GetToolsCapability(ctx, sess); err != nil {
		return nil, jsonrpc.FromError(err)
	} else if ok {
		res.Capabilities.Tools = &struct {
			ListChanged bool `json:"listChanged"`
		}{}
		if lc, ok, _ := tools.GetListChangedCapability(ctx, sess); ok {
			registered, _ := lc.Register(connCtx, sess, func(ctx context.Context, _ sessions.Session) {
				h.notify(ctx, mcp.ToolsListChangedNotificationMethod)
			})
			res.Capabilities.Tools.ListChanged = registered
		}
	}
	if resources, ok, err := h.srv.GetResourcesCapability(ctx, sess); err != nil {
		return nil, jsonrpc.FromError(err)
	} else if ok {
		res.Capabilities.Resources = &struct {
			ListChanged bool `json:"listChanged"`
			Subscribe   bool `json:"subscribe"`
		}{}
		if lc, ok, _ := resources.GetListChangedCapability(ctx, sess); ok {
			registered, _ := lc.Register(connCtx, sess, func(ctx context.Context, _ sessions.Session, _ string) {
				h.notify(ctx, mcp.ResourcesListChangedNotificationMethod)
			})
			res.Capabilities.Resources.ListChanged = registered
		}
	}
	if _, ok, err := h.srv.GetLoggingCapability(ctx, sess); err != nil {
		return nil, jsonrpc.FromError(err)
	} else if ok {
		res.Capabilities.Logging = &struct{}{}
	}

	h.l.InfoContext(ctx, "stdio.initialize",
		slog.String("protocol_version", version),
		slog.String("client", req.ClientInfo.Name),
		slog.String("session", sess.SessionID()),
	)
	return res, nil
}

func (h *Handler) tools(ctx context.Context, sess *session) (mcpservice.ToolsCapability, *jsonrpc.Error) {
	tools, ok, err := h.srv.GetToolsCapability(ctx, sess)
	if err != nil {
		return nil, jsonrpc.FromError(err)
	}
	if !ok {
		return nil, methodNotFound("tools")
	}
	return tools, nil
}

func (h *Handler) resources(ctx context.Context, sess *session) (mcpservice.ResourcesCapability, *jsonrpc.Error) {
	resources, ok, err := h.srv.GetResourcesCapability(ctx, sess)
	if err != nil {
		return nil, jsonrpc.FromError(err)
	}
	if !ok {
		return nil, methodNotFound("resources")
	}
	return resources, nil
}

func (h *Handler) session() *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess
}

func (h *Handler) notify(ctx context.Context, method mcp.Method) {
	n, err := jsonrpc.NewNotification(string(method), nil)
	if err != nil {
		return
	}
	h.write(ctx, n)
}

func (h *Handler) write(ctx context.Context, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.l.ErrorContext(ctx, "stdio.write.marshal", slog.String("err", err.Error()))
		return
	}
	b = append(b, '\n')
	h.wmu.Lock()
	defer h.wmu.Unlock()
	if h.connCtx.Err() != nil {
		h.l.DebugContext(ctx, "stdio.write.dropped")
		return
	}
	if _, err := h.w.Write(b); err != nil {
		h.l.WarnContext(ctx, "stdio.write", slog.String("err", err.Error()))
	}
}

func decodeParams(raw json.RawMessage, v any) *jsonrpc.Error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &jsonrpc.Error{Code: jsonrpc.ErrorCodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func methodNotFound(method string) *jsonrpc.Error {
	return &jsonrpc.Error{Code: jsonrpc.ErrorCodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", method)}
}

func cursorOf(c string) *string {
	if c == "" {
		return nil
	}
	return &c
}

func nextCursor(c *string) mcp.PaginatedResult {
	if c == nil {
		return mcp.PaginatedResult{}
	}
	return mcp.PaginatedResult{NextCursor: *c}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
