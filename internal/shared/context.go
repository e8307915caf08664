package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession returns a child context carrying the request session.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session stored by the middleware, or nil
// when the request never passed through it.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
