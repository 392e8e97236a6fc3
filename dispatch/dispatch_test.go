package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ggoodman/mcp-toolkit-go/backend"
	"github.com/ggoodman/mcp-toolkit-go/config"
	"github.com/ggoodman/mcp-toolkit-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/registry"
	"github.com/ggoodman/mcp-toolkit-go/stdio"
)

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

type echoArgs struct {
	Msg string `json:"msg"`
}

type point struct{ X, Y int }

func (p point) String() string { return "point" }

type client struct {
	t     *testing.T
	in    io.WriteCloser
	out   chan *jsonrpc.AnyMessage
	done  chan error
	nextN int
}

func start(t *testing.T, s *Server) *client {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{t: t, in: inW, out: make(chan *jsonrpc.AnyMessage, 16), done: make(chan error, 1)}
	go func() {
		c.done <- s.Serve(ctx, stdio.WithIO(inR, outW), stdio.WithUserProvider(stdio.StaticUserProvider("tester")))
		_ = outW.Close()
	}()
	go func() {
		sc := bufio.NewScanner(outR)
		for sc.Scan() {
			var msg jsonrpc.AnyMessage
			if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
				t.Errorf("decode output %q: %v", sc.Text(), err)
				continue
			}
			c.out <- &msg
		}
		close(c.out)
	}()
	t.Cleanup(func() {
		cancel()
		_ = inW.Close()
	})

	c.request(mcp.InitializeMethod, mcp.InitializeRequest{
		ProtocolVersion: mcp.LatestProtocolVersion,
		ClientInfo:      mcp.ImplementationInfo{Name: "client", Version: "0.0.1"},
	})
	c.result(&mcp.InitializeResult{})
	return c
}

func (c *client) write(v any) {
	c.t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if _, err := c.in.Write(append(b, '\n')); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *client) request(method mcp.Method, params any) string {
	c.t.Helper()
	c.nextN++
	id := fmt.Sprintf("%s-%d", method, c.nextN)
	raw, err := json.Marshal(params)
	if err != nil {
		c.t.Fatal(err)
	}
	c.write(&jsonrpc.Request{
		JSONRPCVersion: jsonrpc.ProtocolVersion,
		Method:         string(method),
		ID:             jsonrpc.NewRequestID(id),
		Params:         raw,
	})
	return id
}

func (c *client) next() *jsonrpc.AnyMessage {
	c.t.Helper()
	select {
	case msg, ok := <-c.out:
		if !ok {
			c.t.Fatal("output closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		c.t.Fatal("timeout waiting for output")
	}
	return nil
}

func (c *client) response() *jsonrpc.Response {
	c.t.Helper()
	for {
		msg := c.next()
		if msg.Type() == "response" {
			return msg.AsResponse()
		}
	}
}

func (c *client) result(v any) {
	c.t.Helper()
	res := c.response()
	if res.Error != nil {
		c.t.Fatalf("unexpected error response: %+v", res.Error)
	}
	if err := json.Unmarshal(res.Result, v); err != nil {
		c.t.Fatalf("decode result: %v", err)
	}
}

func (c *client) callTool(name string, args any) *mcp.CallToolResult {
	c.t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		c.t.Fatal(err)
	}
	c.request(mcp.ToolsCallMethod, mcp.CallToolRequestReceived{Name: name, Arguments: raw})
	var res mcp.CallToolResult
	c.result(&res)
	return &res
}

func errorCode(t *testing.T, res *mcp.CallToolResult) mcperr.Kind {
	t.Helper()
	if !res.IsError || len(res.Content) != 1 {
		t.Fatalf("expected a single error block, got %+v", res)
	}
	var resp mcperr.Response
	if err := json.Unmarshal([]byte(res.Content[0].Text), &resp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return resp.Code
}

func newServer(opts ...backend.Option) *Server {
	s := New("dispatch-test", opts...)
	s.RegisterTool(registry.NewSyncTool("add", func(a addArgs) (int, error) { return a.A + a.B, nil }))
	s.RegisterTool(registry.NewSyncTool("where", func(struct{}) (point, error) { return point{1, 2}, nil }))
	s.RegisterResource(registry.NewResource("config://app", func(ctx context.Context, uri string, _ map[string]string) (any, error) {
		return "debug=true", nil
	}))
	return s
}

func TestListTools(t *testing.T) {
	c := start(t, newServer())

	c.request(mcp.ToolsListMethod, mcp.ListToolsRequest{})
	var res mcp.ListToolsResult
	c.result(&res)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	if diff := cmp.Diff([]string{"add", "where"}, names); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, res.Tools[0].InputSchema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestListToolsPaginates(t *testing.T) {
	c := start(t, newServer(backend.WithConfig(config.Map{"page_size": 1})))

	c.request(mcp.ToolsListMethod, mcp.ListToolsRequest{})
	var first mcp.ListToolsResult
	c.result(&first)
	if len(first.Tools) != 1 || first.Tools[0].Name != "add" || first.NextCursor == "" {
		t.Fatalf("first page = %+v", first)
	}

	c.request(mcp.ToolsListMethod, mcp.ListToolsRequest{PaginatedRequest: mcp.PaginatedRequest{Cursor: first.NextCursor}})
	var second mcp.ListToolsResult
	c.result(&second)
	if len(second.Tools) != 1 || second.Tools[0].Name != "where" || second.NextCursor != "" {
		t.Fatalf("second page = %+v", second)
	}
}

func TestCallTool(t *testing.T) {
	c := start(t, newServer())

	res := c.callTool("add", map[string]any{"a": 2, "b": 3})
	if res.IsError || res.Content[0].Text != "5" {
		t.Fatalf("add(2, 3) = %+v", res)
	}

	res = c.callTool("where", map[string]any{})
	if res.Content[0].Text != `{"result":"point"}` {
		t.Fatalf("where = %q", res.Content[0].Text)
	}
}

func TestCallToolErrors(t *testing.T) {
	c := start(t, newServer())

	cases := []struct {
		name string
		tool string
		args any
		want mcperr.Kind
	}{
		{"missing", "add", map[string]any{"a": 1}, mcperr.KindMissingParam},
		{"text for integer", "add", map[string]any{"a": "two", "b": 3}, mcperr.KindInvalidParam},
		{"unknown", "nope", map[string]any{}, mcperr.KindToolNotFound},
		{"non-object", "add", []int{1, 2}, mcperr.KindInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errorCode(t, c.callTool(tc.tool, tc.args)); got != tc.want {
				t.Fatalf("code = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAsyncCallDoesNotBlock(t *testing.T) {
	s := newServer()
	gate := make(chan struct{})
	s.RegisterTool(registry.NewTool("wait_echo", func(ctx context.Context, a echoArgs) (string, error) {
		select {
		case <-gate:
			return a.Msg, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}))
	c := start(t, s)

	raw, _ := json.Marshal(map[string]any{"msg": "hello"})
	slowID := c.request(mcp.ToolsCallMethod, mcp.CallToolRequestReceived{Name: "wait_echo", Arguments: raw})

	res := c.callTool("add", map[string]any{"a": 1, "b": 1})
	if res.Content[0].Text != "2" {
		t.Fatalf("add = %+v", res)
	}

	close(gate)
	resp := c.response()
	if resp.ID.String() != slowID {
		t.Fatalf("response id = %s, want %s", resp.ID.String(), slowID)
	}
	var slow mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &slow); err != nil {
		t.Fatal(err)
	}
	if slow.Content[0].Text != "hello" {
		t.Fatalf("wait_echo = %+v", slow)
	}
}

func TestResources(t *testing.T) {
	c := start(t, newServer())

	c.request(mcp.ResourcesListMethod, mcp.ListResourcesRequest{})
	var list mcp.ListResourcesResult
	c.result(&list)
	if len(list.Resources) != 1 || list.Resources[0].URI != "config://app" {
		t.Fatalf("resources = %+v", list.Resources)
	}

	c.request(mcp.ResourcesReadMethod, mcp.ReadResourceRequest{URI: "config://app"})
	var read mcp.ReadResourceResult
	c.result(&read)
	if read.Contents[0].Text != "debug=true" {
		t.Fatalf("contents = %+v", read.Contents)
	}

	c.request(mcp.ResourcesReadMethod, mcp.ReadResourceRequest{URI: "config://other"})
	resp := c.response()
	if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeResourceNotFound {
		t.Fatalf("expected resource not found, got %+v", resp)
	}
}

func TestRegisterWhileRunningNotifies(t *testing.T) {
	s := newServer()
	c := start(t, s)
	c.write(&jsonrpc.Request{JSONRPCVersion: jsonrpc.ProtocolVersion, Method: string(mcp.InitializedNotificationMethod)})

	// Round-trip once so the listChanged registration has completed.
	c.request(mcp.PingMethod, struct{}{})
	c.result(&struct{}{})

	s.RegisterTool(registry.NewSyncTool("echo", func(a echoArgs) (string, error) { return a.Msg, nil }))

	msg := c.next()
	if msg.Type() != "notification" || msg.Method != string(mcp.ToolsListChangedNotificationMethod) {
		t.Fatalf("expected tools list_changed notification, got %+v", msg)
	}
	if res := c.callTool("echo", map[string]any{"msg": "hi"}); res.Content[0].Text != "hi" {
		t.Fatalf("echo = %+v", res)
	}
}

func TestServeOnce(t *testing.T) {
	s := newServer(backend.WithLogger(slog.Default()))
	c := start(t, s)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("second Run = %v, want nil", err)
	}
	if s.State() != backend.StateRunning {
		t.Fatalf("state = %v", s.State())
	}

	_ = c.in.Close()
	select {
	case err := <-c.done:
		if err != nil {
			t.Fatalf("Serve = %v, want nil at EOF", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return at EOF")
	}
}

func TestLoggingCapabilityRequiresLevelVar(t *testing.T) {
	var lv slog.LevelVar
	c := start(t, newServer(backend.WithLevelVar(&lv)))

	c.request(mcp.LoggingSetLevelMethod, mcp.SetLevelRequest{Level: mcp.LoggingLevelDebug})
	c.result(&struct{}{})
	if lv.Level() != slog.LevelDebug {
		t.Fatalf("level = %v", lv.Level())
	}
}
