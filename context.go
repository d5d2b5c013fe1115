package lifescope

import "context"

type ctxKey int

const (
	containerCtxKey ctxKey = iota
	requestIDCtxKey
)

// WithContainer returns a context carrying the given container, typically
// a request scope attached by the RequestScope middleware.
func WithContainer(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, containerCtxKey, c)
}

// ContainerFrom extracts the container carried by ctx.
func ContainerFrom(ctx context.Context) (*Container, bool) {
	c, ok := ctx.Value(containerCtxKey).(*Container)
	return c, ok
}

// WithRequestID returns a context carrying the request identifier that
// owns the request scope.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, requestID)
}

// RequestIDFrom extracts the request identifier carried by ctx.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDCtxKey).(string)
	return id, ok
}
