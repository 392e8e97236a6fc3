package mcperr

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
)

// Error is a classified failure. Values are immutable once constructed; the
// With helpers return modified copies.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Cause   error

	stack []uintptr
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, stack: callers()}
}

// Newf constructs an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), stack: callers()}
}

// Wrap constructs an *Error of the given kind around cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, stack: callers()}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same kind whose message is empty or equal.
// This lets errors.Is(err, &mcperr.Error{Kind: mcperr.KindToolNotFound}) work
// as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// WithDetail returns a copy of e with key set to value in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	maps.Copy(cp.Details, e.Details)
	cp.Details[key] = value
	return &cp
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Details = maps.Clone(e.Details)
	cp.Cause = cause
	return &cp
}

// Detail returns a detail value by key.
func (e *Error) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// Response converts e to its wire form without trace ID or traceback.
func (e *Error) Response() Response {
	return Response{
		Code:    e.Kind,
		Message: e.Message,
		Details: maps.Clone(e.Details),
	}
}

// StackTrace renders the call stack captured at construction.
func (e *Error) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

func callers() []uintptr {
	pcs := make([]uintptr, 32)
	// Skip runtime.Callers, callers and the constructor itself.
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}
