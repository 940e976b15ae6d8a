package cache

import "context"

type refreshKey struct{}

// WithRefresh marks ctx so that cache-through reads beneath it skip cached
// entries and overwrite them with fresh results.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// Refreshing reports whether ctx was marked by [WithRefresh].
func Refreshing(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}
