// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	validator oauth.TokenValidator
	scopes    oauth.ScopeChecker
	responder transportcore.ErrorResponder
	logger    *slog.Logger

	// challengeScope is advertised in 401 challenges.
	challengeScope string
}

// NewAuthMiddleware creates bearer-token authentication middleware.
// defaultScopes are advertised as scope in 401 challenges.
// If logger is nil, it uses the default slog logger.
func NewAuthMiddleware(
	validator oauth.TokenValidator,
	scopes oauth.ScopeChecker,
	responder transportcore.ErrorResponder,
	defaultScopes []string,
	logger *slog.Logger,
) transportcore.AuthMiddleware {
	if validator == nil {
		panic("validator cannot be nil")
	}
	if scopes == nil {
		panic("scope checker cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authMiddleware{
		validator:      validator,
		scopes:         scopes,
		responder:      responder,
		logger:         logger,
		challengeScope: strings.Join(defaultScopes, " "),
	}
}

// Authenticate validates the Bearer token and stores the AuthContext in
// the request context for downstream handlers.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := transportcore.Track(w)

			token, ok := ExtractBearerToken(r)
			if !ok {
				m.responder.Unauthorized(tw, m.challengeScope, extractionError(r))
				return
			}

			ac, err := m.validator.Authenticate(r.Context(), token)
			if err != nil {
				m.logger.Warn("token rejected",
					"reason", oauth.FailureReason(err),
					"request_id", transportcore.RequestIDFromContext(r.Context()),
				)
				m.responder.Unauthorized(tw, m.challengeScope, err)
				return
			}

			m.logger.Debug("token accepted",
				"user_id", ac.UserID,
				"scopes", ac.Scopes,
				"request_id", transportcore.RequestIDFromContext(r.Context()),
			)
			next.ServeHTTP(tw, r.WithContext(transportcore.ContextWithAuth(r.Context(), ac)))
		})
	}
}

// RequireScopes rejects requests lacking any of scopes. A request that
// reaches it unauthenticated gets 401.
func (m *authMiddleware) RequireScopes(scopes ...string) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := transportcore.Track(w)

			ac, ok := transportcore.AuthFromContext(r.Context())
			if !ok {
				m.responder.Unauthorized(tw, m.challengeScope, transportcore.ErrMissingToken)
				return
			}

			if err := m.scopes.RequireScopes(ac, scopes...); err != nil {
				m.responder.Forbidden(tw, scopes, err)
				return
			}

			next.ServeHTTP(tw, r)
		})
	}
}
