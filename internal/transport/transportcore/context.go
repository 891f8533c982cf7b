package transportcore

import (
	"context"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// AuthContextKey is the context key for the authenticated caller.
	AuthContextKey contextKey = "oauth_auth_context"

	// RequestIDContextKey is the context key for the request id.
	RequestIDContextKey contextKey = "request_id"
)

// AuthFromContext returns the AuthContext stored by the authentication
// middleware.
func AuthFromContext(ctx context.Context) (*oauth.AuthContext, bool) {
	if ctx == nil {
		return nil, false
	}
	ac, ok := ctx.Value(AuthContextKey).(*oauth.AuthContext)
	return ac, ok && ac != nil
}

// ContextWithAuth returns a copy of ctx carrying ac.
func ContextWithAuth(ctx context.Context, ac *oauth.AuthContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, AuthContextKey, ac)
}

// RequestIDFromContext returns the request id assigned by the logging
// middleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RequestIDContextKey, id)
}
