package transport

import (
	"net/http"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// AuthMiddleware authenticates bearer tokens and enforces scopes.
type AuthMiddleware = transportcore.AuthMiddleware

// ErrorResponder writes RFC 6750 and RFC 9728 compliant error responses.
type ErrorResponder = transportcore.ErrorResponder

// Chain wraps h so that the first middleware is the outermost layer.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	return transportcore.Chain(h, middlewares...)
}
