package shared

import (
	"context"

	"github.com/google/uuid"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// OwnerIDFromContext returns the signed-in owner, or uuid.Nil.
func OwnerIDFromContext(ctx context.Context) uuid.UUID {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.OwnerID
	}
	return uuid.Nil
}
