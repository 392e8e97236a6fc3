package auth

import "context"

type ctxKey struct{}

// NewContext returns ctx carrying p. Tool handlers read it back with
// FromContext to authenticate their upstream calls.
func NewContext(ctx context.Context, p Provider) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the provider stored by NewContext, or None when there
// is none.
func FromContext(ctx context.Context) Provider {
	if p, ok := ctx.Value(ctxKey{}).(Provider); ok {
		return p
	}
	return None{}
}
