package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ggoodman/mcp-toolkit-go/storage"
	"github.com/ggoodman/mcp-toolkit-go/storage/storagetest"
)

func TestConformance(t *testing.T) {
	s, err := New(100, 0)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()
	storagetest.Run(t, s)
}

func TestEviction(t *testing.T) {
	s, err := New(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	for i := range 3 {
		if err := s.Set(ctx, fmt.Sprint(i), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if item, _ := s.Get(ctx, "0"); item != nil {
		t.Fatal("least recently used entry should have been evicted")
	}
}

func TestSweeperRemovesExpired(t *testing.T) {
	s, err := New(10, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v"), storage.WithTTL(time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.RLock()
		n := s.cache.Len()
		s.mu.RUnlock()
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sweeper did not remove expired entry")
}

func TestClosed(t *testing.T) {
	s, err := New(10, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := s.Set(context.Background(), "k", nil); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("Set after Close = %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := New(10, 0)
	defer s.Close()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("abc"))
	item, _ := s.Get(ctx, "k")
	item.Data[0] = 'z'
	again, _ := s.Get(ctx, "k")
	if string(again.Data) != "abc" {
		t.Fatalf("stored data mutated: %q", again.Data)
	}
}
