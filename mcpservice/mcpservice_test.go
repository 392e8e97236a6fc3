package mcpservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/registry"
	"github.com/ggoodman/mcp-toolkit-go/schema"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	p := Paginate(items, nil, 2)
	if len(p.Items) != 2 || p.NextCursor == nil || *p.NextCursor != "2" {
		t.Fatalf("first page = %+v", p)
	}
	p = Paginate(items, p.NextCursor, 2)
	if p.Items[0] != 3 || *p.NextCursor != "4" {
		t.Fatalf("second page = %+v", p)
	}
	p = Paginate(items, p.NextCursor, 2)
	if len(p.Items) != 1 || p.NextCursor != nil {
		t.Fatalf("last page = %+v", p)
	}
	if all := Paginate(items, nil, 0); len(all.Items) != 5 {
		t.Fatalf("unbounded page = %+v", all)
	}
	bad := "nope"
	if p := Paginate(items, &bad, 10); len(p.Items) != 5 {
		t.Fatalf("bad cursor should restart, got %+v", p)
	}
}

func TestDynamicToolsDefaults(t *testing.T) {
	tools := NewDynamicTools()
	page, err := tools.ListTools(context.Background(), nil, nil)
	if err != nil || len(page.Items) != 0 {
		t.Fatalf("page = %+v, %v", page, err)
	}
	if _, err := tools.CallTool(context.Background(), nil, &mcp.CallToolRequestReceived{Name: "x"}); !mcperr.IsKind(err, mcperr.KindToolNotFound) {
		t.Fatalf("err = %v, want TOOL_NOT_FOUND", err)
	}
	if _, err := tools.CallTool(context.Background(), nil, &mcp.CallToolRequestReceived{}); !mcperr.IsKind(err, mcperr.KindMissingParam) {
		t.Fatalf("err = %v, want MISSING_PARAMETER", err)
	}
	if _, ok, _ := tools.GetListChangedCapability(context.Background(), nil); ok {
		t.Fatal("listChanged advertised without subscriber")
	}
}

func TestDynamicResourcesDefaults(t *testing.T) {
	res := NewDynamicResources()
	ctx := context.Background()
	if page, err := res.ListResources(ctx, nil, nil); err != nil || len(page.Items) != 0 {
		t.Fatalf("page = %+v, %v", page, err)
	}
	if page, err := res.ListResourceTemplates(ctx, nil, nil); err != nil || len(page.Items) != 0 {
		t.Fatalf("templates = %+v, %v", page, err)
	}
	if _, err := res.ReadResource(ctx, nil, "config://app"); !mcperr.IsKind(err, mcperr.KindResourceNotFound) {
		t.Fatalf("err = %v, want RESOURCE_NOT_FOUND", err)
	}
}

func TestDynamicResourcesListChangedStopsWithContext(t *testing.T) {
	reg := registry.New()
	res := NewDynamicResources(WithResourcesChangeSubscriber(reg.ResourcesChanged()))
	lc, ok, _ := res.GetListChangedCapability(context.Background(), nil)
	if !ok {
		t.Fatal("listChanged not advertised")
	}

	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan string, 4)
	if ok, _ := lc.Register(ctx, nil, func(_ context.Context, _ sessions.Session, uri string) { fired <- uri }); !ok {
		t.Fatal("register failed")
	}
	reg.AddResource(registry.NewResource("config://app", func(context.Context, string, map[string]string) (any, error) { return "", nil }))
	select {
	case uri := <-fired:
		if uri != "" {
			t.Fatalf("uri = %q, want list-wide change", uri)
		}
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	reg.AddResource(registry.NewResource("config://other", func(context.Context, string, map[string]string) (any, error) { return "", nil }))
	select {
	case <-fired:
		t.Fatal("callback invoked after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDynamicToolsListChanged(t *testing.T) {
	reg := registry.New()
	tools := NewDynamicTools(WithToolsChangeSubscriber(reg.ToolsChanged()))
	lc, ok, err := tools.GetListChangedCapability(context.Background(), nil)
	if err != nil || !ok {
		t.Fatalf("listChanged = %v, %v", ok, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan struct{}, 1)
	if ok, _ := lc.Register(ctx, nil, func(context.Context, sessions.Session) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}); !ok {
		t.Fatal("register failed")
	}
	reg.AddTool(registry.NewRawTool("noop", schema.Build().Contract(),
		func(context.Context, map[string]any) (any, error) { return nil, nil }))
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestServerCapabilities(t *testing.T) {
	tools := NewDynamicTools()
	srv := NewServer(
		WithServerInfo(mcp.ImplementationInfo{Name: "demo", Version: "1.0.0"}),
		WithInstructions("be nice"),
		WithToolsCapability(tools),
	)
	ctx := context.Background()
	info, _ := srv.GetServerInfo(ctx, nil)
	if info.Name != "demo" {
		t.Fatalf("info = %+v", info)
	}
	if instr, ok, _ := srv.GetInstructions(ctx, nil); !ok || instr != "be nice" {
		t.Fatalf("instructions = %q %v", instr, ok)
	}
	if _, ok, _ := srv.GetToolsCapability(ctx, nil); !ok {
		t.Fatal("tools missing")
	}
	if _, ok, _ := srv.GetResourcesCapability(ctx, nil); ok {
		t.Fatal("resources unexpectedly present")
	}
	if _, ok, _ := srv.GetPreferredProtocolVersion(ctx); ok {
		t.Fatal("no preferred version configured")
	}
}

func TestSlogLevelVarLogging(t *testing.T) {
	var lv slog.LevelVar
	logging := NewSlogLevelVarLogging(&lv)
	cases := map[mcp.LoggingLevel]slog.Level{
		mcp.LoggingLevelDebug:    slog.LevelDebug,
		mcp.LoggingLevelWarning:  slog.LevelWarn,
		mcp.LoggingLevelNotice:   slog.LevelInfo + 2,
		mcp.LoggingLevelCritical: slog.LevelError + 4,
	}
	for level, want := range cases {
		if err := logging.SetLevel(context.Background(), nil, level); err != nil {
			t.Fatal(err)
		}
		if lv.Level() != want {
			t.Fatalf("%s: level = %v, want %v", level, lv.Level(), want)
		}
	}
	if err := logging.SetLevel(context.Background(), nil, "loud"); !errors.Is(err, ErrInvalidLoggingLevel) {
		t.Fatalf("err = %v", err)
	}
}

func TestResults(t *testing.T) {
	if r := TextResult("ok"); r.IsError || r.Content[0].Text != "ok" {
		t.Fatalf("text result = %+v", r)
	}
	if r := Errorf("bad %d", 1); !r.IsError || r.Content[0].Text != "bad 1" {
		t.Fatalf("error result = %+v", r)
	}
}
