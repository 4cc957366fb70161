package viewing

import "context"

type ctxKey struct{}

// NewContext stores a viewing-context bucket key (e.g. "evening_weekend_tv")
// in the request context for strategies that rank by temporal context.
func NewContext(ctx context.Context, contextKey string) context.Context {
	return context.WithValue(ctx, ctxKey{}, contextKey)
}

// FromContext extracts the viewing-context bucket key, if one was set.
func FromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ctxKey{}).(string)
	return key, ok && key != ""
}
