package stdio

import (
	"io"
	"log/slog"
)

// Option customizes a Handler. Zero values passed to options are ignored so
// callers can forward optional settings unconditionally.
type Option func(*Handler)

// WithIO replaces os.Stdin and os.Stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(h *Handler) {
		setIf(&h.r, r, r != nil)
		setIf(&h.w, w, w != nil)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { setIf(&h.l, l, l != nil) }
}

func WithUserProvider(up UserProvider) Option {
	return func(h *Handler) { setIf(&h.userProvider, up, up != nil) }
}

// WithMaxMessageSize caps a single inbound line in bytes (default 4 MiB).
func WithMaxMessageSize(n int) Option {
	return func(h *Handler) { setIf(&h.maxMessage, n, n > 0) }
}

func setIf[T any](dst *T, v T, ok bool) {
	if ok {
		*dst = v
	}
}
