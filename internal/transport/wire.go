package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jamesprial/mcp-resource-auth/internal/config"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/mcp-resource-auth/internal/transport/internal/http"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/internal/middleware"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// Route patterns served by NewTransportServices.
const (
	RouteMetadata = "GET /.well-known/oauth-protected-resource"
	RouteHealth   = "GET /health"
	RouteSession  = "GET /session"
)

// HealthProbe checks one dependency for the health endpoint.
type HealthProbe = handlers.HealthProbe

// NewServer creates an HTTP server with the timeouts from cfg.
func NewServer(cfg *config.Config, router Router, logger *slog.Logger) Server {
	return transporthttp.NewServer(cfg, router, logger)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewAuthMiddleware creates bearer-token authentication middleware.
// defaultScopes are advertised in 401 challenges.
func NewAuthMiddleware(
	validator oauth.TokenValidator,
	scopes oauth.ScopeChecker,
	responder ErrorResponder,
	defaultScopes []string,
	logger *slog.Logger,
) AuthMiddleware {
	return middleware.NewAuthMiddleware(validator, scopes, responder, defaultScopes, logger)
}

// NewErrorResponder creates an RFC 6750 error responder for realm that
// advertises metadataURL per RFC 9728.
func NewErrorResponder(realm, metadataURL string, logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(realm, metadataURL, logger)
}

// ExtractBearerToken returns the access token from the request's
// Authorization header, or false when there is no single well-formed
// Bearer credential.
func ExtractBearerToken(r *http.Request) (string, bool) {
	return middleware.ExtractBearerToken(r)
}

// NewMetadataHandler creates the RFC 9728 metadata handler.
func NewMetadataHandler(service oauth.MetadataService, responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewMetadataHandler(service, responder, logger)
}

// NewSessionHandler creates the handler describing the authenticated caller.
func NewSessionHandler(capabilities oauth.CapabilityMapper, responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewSessionHandler(capabilities, responder, logger)
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(probes map[string]HealthProbe, logger *slog.Logger) http.Handler {
	return handlers.NewHealthHandler(probes, logger)
}

// NewLoggingMiddleware creates request logging middleware.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// KeySetProbe reports whether the key set at uri can be served.
func KeySetProbe(keySets oauth.KeySetCache, uri string) HealthProbe {
	return func(ctx context.Context) error {
		_, err := keySets.FetchJWKS(ctx, uri)
		return err
	}
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// OAuth is the assembled authentication core.
	OAuth *oauth.Services

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewTransportServices wires the HTTP surface: public metadata and health
// endpoints, and /session behind authentication and the mcp:read scope.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.OAuth == nil {
		return nil, nil, fmt.Errorf("oauth services cannot be nil")
	}
	svc := cfg.OAuth
	if svc.Validator == nil || svc.Scopes == nil || svc.Capabilities == nil || svc.Metadata == nil || svc.KeySets == nil {
		return nil, nil, fmt.Errorf("oauth services are incomplete")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	responder := NewErrorResponder(cfg.ServerConfig.Realm, svc.Metadata.GetMetadataURL(), logger)
	auth := NewAuthMiddleware(svc.Validator, svc.Scopes, responder, []string{pkgoauth.ScopeRead}, logger)

	router := NewRouter()
	router.Use(
		NewRecoveryMiddleware(responder, logger),
		NewLoggingMiddleware(logger),
	)

	router.Handle(RouteMetadata, NewMetadataHandler(svc.Metadata, responder, logger))
	router.Handle(RouteHealth, NewHealthHandler(map[string]HealthProbe{
		"jwks": KeySetProbe(svc.KeySets, cfg.ServerConfig.JWKSURI),
	}, logger))
	router.Handle(RouteSession, Chain(
		NewSessionHandler(svc.Capabilities, responder, logger),
		auth.Authenticate(),
		auth.RequireScopes(pkgoauth.ScopeRead),
	))

	return NewServer(cfg.ServerConfig, router, logger), router, nil
}
