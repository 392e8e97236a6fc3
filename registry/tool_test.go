package registry

import (
	"context"
	"testing"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/schema"
)

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func addNumbers(a addArgs) (int, error) { return a.A + a.B, nil }

type describedArgs struct {
	Text string `json:"text"`
}

func (describedArgs) ToolDescription() string { return "Echo text back" }

func TestNewSyncToolDefaults(t *testing.T) {
	tool := NewSyncTool("", addNumbers)
	if tool.Name() != "addNumbers" {
		t.Fatalf("name = %q", tool.Name())
	}
	if tool.Description() != "Tool: addNumbers" {
		t.Fatalf("description = %q", tool.Description())
	}
	if tool.Async() {
		t.Fatal("sync tool reported async")
	}
	got, err := tool.Invoke(context.Background(), map[string]any{"a": float64(2), "b": float64(3)})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if got != 5 {
		t.Fatalf("got %v", got)
	}
}

func TestToolsWithUnnamedArgumentStructs(t *testing.T) {
	ping := NewTool("ping", func(ctx context.Context, _ struct{}) (string, error) {
		return "pong", nil
	})
	if n := len(ping.Contract().Params); n != 0 {
		t.Fatalf("ping params = %d", n)
	}
	got, err := ping.Invoke(context.Background(), map[string]any{})
	if err != nil || got != "pong" {
		t.Fatalf("ping = %v, %v", got, err)
	}

	echo := NewSyncTool("echo", func(a struct {
		Msg string `json:"msg"`
	}) (string, error) {
		return a.Msg, nil
	})
	if !echo.Contract().IsRequired("msg") {
		t.Fatalf("required = %v", echo.Contract().Required)
	}
	got, err = echo.Invoke(context.Background(), map[string]any{"msg": "hi"})
	if err != nil || got != "hi" {
		t.Fatalf("echo = %v, %v", got, err)
	}
}

func TestNewToolAsyncAndDescription(t *testing.T) {
	tool := NewTool("echo", func(ctx context.Context, a describedArgs) (string, error) {
		return a.Text, nil
	})
	if !tool.Async() {
		t.Fatal("expected async")
	}
	if tool.Description() != "Echo text back" {
		t.Fatalf("description = %q", tool.Description())
	}

	override := NewTool("echo", func(ctx context.Context, a describedArgs) (string, error) {
		return a.Text, nil
	}, WithDescription("explicit"), WithAsync(false))
	if override.Description() != "explicit" || override.Async() {
		t.Fatalf("options not applied: %q async=%v", override.Description(), override.Async())
	}
}

func TestDecodeFailureIsInvalidParameter(t *testing.T) {
	tool := NewSyncTool("add", addNumbers)
	_, err := tool.Invoke(context.Background(), map[string]any{"a": "two", "b": 3})
	e, ok := mcperr.As(err)
	if !ok || e.Kind != mcperr.KindInvalidParam {
		t.Fatalf("err = %v", err)
	}
	if e.Details["parameter"] != "a" {
		t.Fatalf("details = %v", e.Details)
	}
}

func TestNewRawTool(t *testing.T) {
	c := schema.Build().String("q", schema.Required()).Contract()
	tool := NewRawTool("search", c, func(ctx context.Context, args map[string]any) (any, error) {
		return args["q"], nil
	})
	d := tool.Descriptor()
	if d.Name != "search" || len(d.InputSchema.Required) != 1 {
		t.Fatalf("descriptor = %+v", d)
	}
	got, err := tool.Invoke(context.Background(), map[string]any{"q": "go"})
	if err != nil || got != "go" {
		t.Fatalf("got %v, %v", got, err)
	}
}
