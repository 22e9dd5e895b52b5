package auth

import "context"

// Session is the resolved identity of the caller. It is built once by the
// middleware from the bearer token and passed through the request context;
// nothing reads ambient global auth state.
type Session struct {
	UserID string
	Email  string
	Role   string
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by the middleware, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
