// Package registry holds tool and resource registrations for a server.
//
// A ToolRegistration pairs a name, description and parameter contract with
// the callable that implements the tool. Registrations are built from plain Go
// functions over an argument struct:
//
//	type addArgs struct {
//	    A int `json:"a"`
//	    B int `json:"b"`
//	}
//
//	add := registry.NewSyncTool("add", func(a addArgs) (int, error) {
//	    return a.A + a.B, nil
//	}, registry.WithDescription("Add two integers"))
//
// NewTool builds an asynchronous tool whose function receives a context and
// is awaited by the engine; NewSyncTool builds a synchronous one; NewRawTool
// accepts an explicitly declared schema.Contract and an untyped handler.
//
// A Registry is an ordered, concurrency-safe collection keyed by tool name
// and resource pattern. Registering a duplicate name replaces the previous
// entry in place. Subscribers are signalled whenever either list changes.
package registry
