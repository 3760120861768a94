package identity

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// RequestSession is the identity and token material the auth gate attaches
// to a request. It is immutable per request; logout replaces it rather than
// mutating shared state.
type RequestSession struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// WithSession sets the RequestSession in the given context
func WithSession(ctx context.Context, session *RequestSession) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context
func SessionFromContext(ctx context.Context) (*RequestSession, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*RequestSession)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// ClearSession returns a context without identity or token material. Tokens
// already issued stay valid until natural expiry; this is client-side
// erasure, not revocation.
func ClearSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionCtxKey, (*RequestSession)(nil))
}
