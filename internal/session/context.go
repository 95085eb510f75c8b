package session

import (
	"context"

	"github.com/sessionlite/sessionlite/pkg/id"
)

type ctxKey int

const sessionIDKey ctxKey = 0

// ContextWithID binds the id of the in-flight request's own session to the
// context. The auth middleware calls this once per request from the token's
// sid claim, so every lookup within the request sees the same value.
func ContextWithID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// IDFromContext returns the bound session id, or "" outside an
// authenticated request.
func IDFromContext(ctx context.Context) id.SessionID {
	sid, _ := ctx.Value(sessionIDKey).(id.SessionID)
	return sid
}
