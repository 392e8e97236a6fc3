package main

import (
	"context"
	"time"

	mcptoolkit "github.com/ggoodman/mcp-toolkit-go"
	"github.com/ggoodman/mcp-toolkit-go/registry"
)

type addArgs struct {
	A float64 `json:"a" jsonschema:"description=First addend"`
	B float64 `json:"b" jsonschema:"description=Second addend"`
}

type echoArgs struct {
	Message string `json:"message"`
	Delay   int    `json:"delay_ms,omitempty" jsonschema:"description=Milliseconds to wait before replying"`
}

func registerDemoTools(srv mcptoolkit.Server) {
	srv.RegisterTool(registry.NewSyncTool("add", func(a addArgs) (float64, error) {
		return a.A + a.B, nil
	}, registry.WithDescription("Add two numbers")))

	srv.RegisterTool(registry.NewTool("echo", func(ctx context.Context, a echoArgs) (string, error) {
		if a.Delay > 0 {
			if err := sleep(ctx, a.Delay); err != nil {
				return "", err
			}
		}
		return a.Message, nil
	}, registry.WithDescription("Echo a message, optionally after a delay")))
}

func sleep(ctx context.Context, ms int) error {
	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
