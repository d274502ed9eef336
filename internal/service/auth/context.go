package auth

import "context"

type principalKey struct{}

// WithPrincipal returns a context carrying the authenticated operator.
func WithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalKey{}, name)
}

// Principal returns the authenticated operator, if any.
func Principal(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(principalKey{}).(string)
	return name, ok && name != ""
}
