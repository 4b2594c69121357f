package logging

import "context"

type contextKey string

const pageOffsetKey contextKey = "page_offset"

// WithPageOffset tags the context with the offset of the page being loaded.
func WithPageOffset(ctx context.Context, offset int) context.Context {
	return context.WithValue(ctx, pageOffsetKey, offset)
}

// GetPageOffset retrieves the page offset from the context.
func GetPageOffset(ctx context.Context) (int, bool) {
	offset, ok := ctx.Value(pageOffsetKey).(int)
	return offset, ok
}
