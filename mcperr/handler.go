package mcperr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Rule converts matching errors into a Response. Rules are evaluated in
// order; the first whose Match returns true wins.
type Rule struct {
	// Name identifies the rule in logs.
	Name string
	// Match reports whether the rule applies to err.
	Match func(err error) bool
	// Convert builds the Response. verbose mirrors the Handler setting.
	Convert func(err error, verbose bool) Response
}

// MatchKinds matches errors whose chain carries an *Error of any given kind.
func MatchKinds(kinds ...Kind) func(error) bool {
	return func(err error) bool {
		e, ok := As(err)
		if !ok {
			return false
		}
		for _, k := range kinds {
			if e.Kind == k {
				return true
			}
		}
		return false
	}
}

// MatchType matches errors whose chain contains a value assignable to T.
func MatchType[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

// MatchIs matches errors for which errors.Is(err, target) holds.
func MatchIs(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// Handler converts errors to Responses using an ordered rule table. A Handler
// is safe for concurrent use.
type Handler struct {
	mu       sync.RWMutex
	custom   []Rule
	defaults []Rule

	verbose  bool
	traceIDs bool
	newID    func() string
	log      *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithVerbose attaches stack traces and cause chains to responses.
func WithVerbose(verbose bool) HandlerOption {
	return func(h *Handler) { h.verbose = verbose }
}

// WithTraceIDs toggles correlation IDs on responses. Enabled by default.
func WithTraceIDs(enabled bool) HandlerOption {
	return func(h *Handler) { h.traceIDs = enabled }
}

// WithTraceIDFunc overrides the correlation ID generator.
func WithTraceIDFunc(fn func() string) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// WithLogger sets the logger conversions are reported to.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler constructs a Handler with the default rule table.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		traceIDs: true,
		newID:    uuid.NewString,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.defaults = []Rule{
		{Name: "auth", Match: MatchKinds(authKinds...), Convert: typedResponse(false)},
		{Name: "timeout", Match: MatchKinds(timeoutKinds...), Convert: typedResponse(false)},
		{Name: "api", Match: MatchKinds(apiKinds...), Convert: typedResponse(true)},
		{Name: "validation", Match: MatchKinds(validationKinds...), Convert: typedResponse(true)},
		{Name: "tool", Match: MatchKinds(toolKinds...), Convert: typedResponse(true)},
		{Name: "config", Match: MatchKinds(configKinds...), Convert: typedResponse(false)},
		{Name: "typed", Match: MatchType[*Error](), Convert: typedResponse(true)},
		{Name: "deadline", Match: MatchIs(context.DeadlineExceeded), Convert: contextResponse(KindToolTimeout, "Operation timed out")},
		{Name: "canceled", Match: MatchIs(context.Canceled), Convert: contextResponse(KindInvalidRequest, "Request cancelled")},
	}
	return h
}

// Verbose reports whether the handler attaches diagnostics.
func (h *Handler) Verbose() bool { return h.verbose }

// Register installs a rule ahead of every default rule and every rule
// registered before it.
func (h *Handler) Register(r Rule) {
	if r.Match == nil || r.Convert == nil {
		panic("mcperr: rule requires Match and Convert")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.custom = append([]Rule{r}, h.custom...)
}

// Handle converts err to a Response.
func (h *Handler) Handle(err error) Response {
	return h.HandleContext(context.Background(), err)
}

// HandleContext converts err to a Response and logs the conversion with ctx.
func (h *Handler) HandleContext(ctx context.Context, err error) Response {
	if err == nil {
		return Response{Code: KindUnknown, Message: "unknown error"}
	}

	rule, ok := h.match(err)
	var resp Response
	if ok {
		resp = rule.Convert(err, h.verbose)
	} else {
		resp = h.generic(err)
		rule.Name = "generic"
	}
	if h.traceIDs && resp.TraceID == "" {
		resp.TraceID = h.newID()
	}

	h.log.LogAttrs(ctx, levelFor(resp.Code), "mcperr.handle",
		slog.String("rule", rule.Name),
		slog.String("code", string(resp.Code)),
		slog.String("trace_id", resp.TraceID),
		slog.String("err", err.Error()),
	)
	return resp
}

func (h *Handler) match(err error) (Rule, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.custom {
		if r.Match(err) {
			return r, true
		}
	}
	for _, r := range h.defaults {
		if r.Match(err) {
			return r, true
		}
	}
	return Rule{}, false
}

func (h *Handler) generic(err error) Response {
	details := map[string]any{"error_type": fmt.Sprintf("%T", err)}
	if h.verbose {
		details["traceback"] = causeChain(err)
	}
	return Response{Code: KindUnknown, Message: err.Error(), Details: details}
}

func typedResponse(traceback bool) func(error, bool) Response {
	return func(err error, verbose bool) Response {
		e, ok := As(err)
		if !ok {
			return Response{Code: KindUnknown, Message: err.Error()}
		}
		resp := e.Response()
		if traceback && verbose {
			if resp.Details == nil {
				resp.Details = map[string]any{}
			}
			resp.Details["traceback"] = e.StackTrace() + causeChain(e.Cause)
			if e.Cause != nil {
				resp.Details["cause"] = e.Cause.Error()
			}
		}
		return resp
	}
}

func contextResponse(kind Kind, message string) func(error, bool) Response {
	return func(err error, verbose bool) Response {
		resp := Response{Code: kind, Message: message}
		if verbose {
			resp.Details = map[string]any{"cause": err.Error()}
		}
		return resp
	}
}

func causeChain(err error) string {
	var b strings.Builder
	for err != nil {
		fmt.Fprintf(&b, "caused by %T: %v\n", err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}

func levelFor(k Kind) slog.Level {
	switch k {
	case KindUnknown, KindToolExecutionFailed, KindConfigInvalid, KindConfigMissing:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
