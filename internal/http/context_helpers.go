package httpx

import (
	"context"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

type sessionKey struct{}

// WithSession attaches the session loaded by RequireSession. Records that
// are not Valid are not attached.
func WithSession(ctx context.Context, sess domainauth.Session) context.Context {
	if !sess.Valid() {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session RequireSession attached.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	return sess, ok
}
