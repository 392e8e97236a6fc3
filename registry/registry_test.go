package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func names(r *Registry) []string {
	var out []string
	for _, t := range r.Tools() {
		out = append(out, t.Name())
	}
	return out
}

func TestRegistryOverwriteKeepsOrder(t *testing.T) {
	r := New()
	r.AddTool(NewSyncTool("a", addNumbers))
	r.AddTool(NewSyncTool("b", addNumbers))
	if !r.AddTool(NewSyncTool("c", addNumbers)) {
		t.Fatal("expected new name")
	}
	if r.AddTool(NewSyncTool("a", addNumbers, WithDescription("second"))) {
		t.Fatal("expected replacement")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names(r)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	a, _ := r.Tool("a")
	if a.Description() != "second" {
		t.Fatalf("description = %q", a.Description())
	}
	if r.ToolCount() != 3 {
		t.Fatalf("count = %d", r.ToolCount())
	}
}

func TestRegistryRemoveTool(t *testing.T) {
	r := New()
	r.AddTool(NewSyncTool("a", addNumbers))
	r.AddTool(NewSyncTool("b", addNumbers))
	r.AddTool(NewSyncTool("c", addNumbers))
	if !r.RemoveTool("b") {
		t.Fatal("remove failed")
	}
	if _, ok := r.Tool("c"); !ok {
		t.Fatal("index broken after removal")
	}
	if diff := cmp.Diff([]string{"a", "c"}, names(r)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func readStatic(text string) ReadFunc {
	return func(ctx context.Context, uri string, vars map[string]string) (any, error) {
		return text, nil
	}
}

func TestMatchResource(t *testing.T) {
	r := New()
	r.AddResource(NewResource("task://{task_id}", readStatic("templated")))
	r.AddResource(NewResource("task://summary", readStatic("summary")))

	res, vars, ok := r.MatchResource("task://abc123")
	if !ok || res.Pattern() != "task://{task_id}" {
		t.Fatalf("match = %v %v", res, ok)
	}
	if vars["task_id"] != "abc123" {
		t.Fatalf("vars = %v", vars)
	}

	res, _, ok = r.MatchResource("task://summary")
	if !ok || res.Pattern() != "task://summary" {
		t.Fatal("concrete resource should win over template")
	}

	if _, _, ok := r.MatchResource("job://x"); ok {
		t.Fatal("unexpected match")
	}
}

func TestResourceTemplateFlags(t *testing.T) {
	concrete := NewResource("config://app", readStatic("x"), WithMIMEType("application/json"))
	if concrete.IsTemplate() {
		t.Fatal("concrete reported as template")
	}
	if concrete.Resource().MimeType != "application/json" {
		t.Fatalf("mime = %q", concrete.Resource().MimeType)
	}
	tpl := NewResource("job://{job_id}", readStatic("x"), WithResourceName("job"))
	if !tpl.IsTemplate() || tpl.Template().Name != "job" {
		t.Fatalf("template = %+v", tpl.Template())
	}
}

func TestParseResourceInvalid(t *testing.T) {
	if _, err := ParseResource("task://{unclosed", readStatic("x")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ParseResource("", readStatic("x")); err == nil {
		t.Fatal("expected error for empty pattern")
	}
}

func TestChangeNotifications(t *testing.T) {
	r := New()
	sub := r.ToolsChanged().Subscriber()
	r.AddTool(NewSyncTool("a", addNumbers))
	select {
	case <-sub:
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}
	r.Close()
	select {
	case _, ok := <-sub:
		if ok {
			// drain a pending signal, then expect close
			if _, ok := <-sub; ok {
				t.Fatal("subscriber not closed")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed")
	}
}

func TestChangeNotifierCoalesces(t *testing.T) {
	var cn ChangeNotifier
	sub := cn.Subscriber()
	for range 5 {
		cn.Notify()
	}
	<-sub
	select {
	case <-sub:
		t.Fatal("expected a single pending signal")
	default:
	}

	cn.Close()
	cn.Close()
	if _, ok := <-cn.Subscriber(); ok {
		t.Fatal("subscriber after Close should be closed")
	}
}
