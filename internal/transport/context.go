package transport

import (
	"context"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

// AuthFromContext returns the caller's AuthContext stored by the
// authentication middleware.
func AuthFromContext(ctx context.Context) (*oauth.AuthContext, bool) {
	return transportcore.AuthFromContext(ctx)
}

// ContextWithAuth returns a copy of ctx carrying ac.
func ContextWithAuth(ctx context.Context, ac *oauth.AuthContext) context.Context {
	return transportcore.ContextWithAuth(ctx, ac)
}

// RequestIDFromContext returns the id assigned by the logging middleware.
func RequestIDFromContext(ctx context.Context) string {
	return transportcore.RequestIDFromContext(ctx)
}
