// Package storagetest holds a conformance suite shared by the Storage
// backends.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ggoodman/mcp-toolkit-go/storage"
)

// Run exercises s against the storage.Storage contract. s must start empty.
func Run(t *testing.T, s storage.Storage) {
	t.Helper()
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, s) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, s) })
	t.Run("TTL", func(t *testing.T) { testTTL(t, s) })
	t.Run("Namespaces", func(t *testing.T) { testNamespaces(t, s) })
	t.Run("Keys", func(t *testing.T) { testKeys(t, s) })
	t.Run("DeleteKey", func(t *testing.T) { testDeleteKey(t, s) })
	t.Run("DeleteNamespace", func(t *testing.T) { testDeleteNamespace(t, s) })
}

func testSetAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	item, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item == nil {
		t.Fatal("expected item, got nil")
	}
	if string(item.Data) != "v2" {
		t.Fatalf("data = %q, want v2", item.Data)
	}
	if item.ExpiresAt != nil {
		t.Fatalf("unexpected expiry %v", item.ExpiresAt)
	}
	if item.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}
}

func testGetMissing(t *testing.T, s storage.Storage) {
	item, err := s.Get(context.Background(), "missing")
	if err != nil || item != nil {
		t.Fatalf("Get missing = %v, %v", item, err)
	}
}

func testTTL(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	ns := storage.WithNamespace("ttl")
	if err := s.Set(ctx, "short", []byte("x"), ns, storage.WithTTL(50*time.Millisecond)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	item, err := s.Get(ctx, "short", ns)
	if err != nil || item == nil {
		t.Fatalf("Get before expiry = %v, %v", item, err)
	}
	if item.ExpiresAt == nil {
		t.Fatal("ExpiresAt not set")
	}

	time.Sleep(150 * time.Millisecond)

	item, err = s.Get(ctx, "short", ns)
	if err != nil || item != nil {
		t.Fatalf("Get after expiry = %v, %v", item, err)
	}
	keys, err := s.Keys(ctx, ns)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("expired key still listed: %v", keys)
	}
}

func testNamespaces(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	a, b := storage.WithNamespace("a"), storage.WithNamespace("b")
	if err := s.Set(ctx, "same", []byte("in-a"), a); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "same", []byte("in-b"), b); err != nil {
		t.Fatal(err)
	}
	ia, _ := s.Get(ctx, "same", a)
	ib, _ := s.Get(ctx, "same", b)
	if ia == nil || ib == nil || string(ia.Data) != "in-a" || string(ib.Data) != "in-b" {
		t.Fatalf("namespaces not isolated: %v %v", ia, ib)
	}
}

func testKeys(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	ns := storage.WithNamespace("keys")
	for _, k := range []string{"c", "a", "b"} {
		if err := s.Set(ctx, k, []byte(k), ns); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.Keys(ctx, ns)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	empty, err := s.Keys(ctx, storage.WithNamespace("nobody"))
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("keys of empty namespace = %v", empty)
	}
}

func testDeleteKey(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	ns := storage.WithNamespace("del")
	_ = s.Set(ctx, "keep", []byte("1"), ns)
	_ = s.Set(ctx, "drop", []byte("2"), ns)
	if err := s.Delete(ctx, ns, storage.WithKey("drop")); err != nil {
		t.Fatal(err)
	}
	keys, _ := s.Keys(ctx, ns)
	if diff := cmp.Diff([]string{"keep"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func testDeleteNamespace(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	gone, kept := storage.WithNamespace("gone"), storage.WithNamespace("kept")
	_ = s.Set(ctx, "x", []byte("1"), gone)
	_ = s.Set(ctx, "y", []byte("2"), gone)
	_ = s.Set(ctx, "x", []byte("3"), kept)
	if err := s.Delete(ctx, gone); err != nil {
		t.Fatal(err)
	}
	keys, _ := s.Keys(ctx, gone)
	if len(keys) != 0 {
		t.Fatalf("namespace not cleared: %v", keys)
	}
	item, _ := s.Get(ctx, "x", kept)
	if item == nil {
		t.Fatal("delete leaked into another namespace")
	}
}
