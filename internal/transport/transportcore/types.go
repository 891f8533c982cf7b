// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// It blocks until the server stops or fails to start.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// The pattern syntax follows http.ServeMux conventions.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)
}

// AuthMiddleware authenticates bearer tokens and enforces scopes per RFC 6750.
type AuthMiddleware interface {
	// Authenticate extracts and validates the bearer token and stores the
	// resulting AuthContext in the request context. Failures are answered
	// with 401 and a challenge.
	Authenticate() Middleware

	// RequireScopes rejects requests whose AuthContext lacks any of scopes
	// with 403. It must run after Authenticate.
	RequireScopes(scopes ...string) Middleware
}

// ErrorResponder writes OAuth-compliant error responses.
//
// Every method is a no-op when the response header has already been sent
// through a ResponseWriter returned by Track.
type ErrorResponder interface {
	// Unauthorized sends 401 with a Bearer challenge. When err matches
	// ErrMissingToken the challenge carries no error code; otherwise it
	// carries invalid_token. scope may be empty.
	Unauthorized(w http.ResponseWriter, scope string, err error)

	// Forbidden sends 403 with error="insufficient_scope" and the required
	// scopes in the challenge.
	Forbidden(w http.ResponseWriter, requiredScopes []string, err error)

	// InternalError sends 500 with a JSON body.
	InternalError(w http.ResponseWriter, err error)

	// BadRequest sends 400 with a JSON body.
	BadRequest(w http.ResponseWriter, err error)
}

// Chain wraps h so that the first middleware is the outermost layer.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
