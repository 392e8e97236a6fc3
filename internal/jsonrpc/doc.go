// Package jsonrpc holds the JSON-RPC 2.0 envelope types used by the stdio
// transport: requests, notifications, responses, error objects and the
// string-or-number request ID.
package jsonrpc
