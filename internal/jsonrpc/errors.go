package jsonrpc

import "github.com/ggoodman/mcp-toolkit-go/mcperr"

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

// Standard codes, plus the MCP code for unknown resources.
const (
	ErrorCodeParseError       ErrorCode = -32700
	ErrorCodeInvalidRequest   ErrorCode = -32600
	ErrorCodeMethodNotFound   ErrorCode = -32601
	ErrorCodeInvalidParams    ErrorCode = -32602
	ErrorCodeInternalError    ErrorCode = -32603
	ErrorCodeResourceNotFound ErrorCode = -32002
)

// CodeForKind picks the protocol error code for an error kind.
func CodeForKind(k mcperr.Kind) ErrorCode {
	switch k {
	case mcperr.KindResourceNotFound:
		return ErrorCodeResourceNotFound
	case mcperr.KindInvalidRequest, mcperr.KindMissingParam, mcperr.KindInvalidParam, mcperr.KindToolNotFound:
		return ErrorCodeInvalidParams
	}
	return ErrorCodeInternalError
}

// FromError converts err into an error object. Typed failures keep their
// message and carry their wire response as data; anything else is an
// internal error.
func FromError(err error) *Error {
	e, ok := mcperr.As(err)
	if !ok {
		return &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return &Error{Code: CodeForKind(e.Kind), Message: e.Message, Data: e.Response()}
}
