package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
	"github.com/ggoodman/mcp-toolkit-go/registry"
)

func TestReadResource(t *testing.T) {
	e := newTestEngine(t)
	e.Registry().AddResource(registry.NewResource("task://{task_id}",
		func(ctx context.Context, uri string, vars map[string]string) (any, error) {
			if vars["task_id"] == "gone" {
				return nil, mcperr.ResourceNotFound(uri)
			}
			if vars["task_id"] == "broken" {
				return nil, errors.New("disk")
			}
			return map[string]any{"id": vars["task_id"]}, nil
		}, registry.WithMIMEType("application/json")))
	e.Registry().AddResource(registry.NewResource("blob://logo",
		func(ctx context.Context, uri string, vars map[string]string) (any, error) {
			return []byte("png"), nil
		}))

	got, err := e.ReadResource(context.Background(), "task://abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.(map[string]any)["id"] != "abc" {
		t.Fatalf("got %v", got)
	}

	contents, err := e.ReadResourceContents(context.Background(), "task://abc")
	if err != nil {
		t.Fatal(err)
	}
	if contents[0].Text != `{"id":"abc"}` || contents[0].MimeType != "application/json" {
		t.Fatalf("contents = %+v", contents)
	}

	blob, err := e.ReadResourceContents(context.Background(), "blob://logo")
	if err != nil || blob[0].Blob != "cG5n" {
		t.Fatalf("blob = %+v, %v", blob, err)
	}

	if _, err := e.ReadResource(context.Background(), "job://1"); !mcperr.IsKind(err, mcperr.KindResourceNotFound) {
		t.Fatalf("unmatched err = %v", err)
	}
	if _, err := e.ReadResource(context.Background(), "task://gone"); !mcperr.IsKind(err, mcperr.KindResourceNotFound) {
		t.Fatalf("typed err = %v", err)
	}
	if _, err := e.ReadResource(context.Background(), "task://broken"); !mcperr.IsKind(err, mcperr.KindToolExecutionFailed) {
		t.Fatalf("untyped err = %v", err)
	}

	if n := len(e.ListResources()); n != 1 {
		t.Fatalf("resources = %d", n)
	}
	if n := len(e.ListResourceTemplates()); n != 1 {
		t.Fatalf("templates = %d", n)
	}
}
