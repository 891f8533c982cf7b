package http

import (
	"net/http"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

// router implements transportcore.Router using http.ServeMux.
type router struct {
	mux         *http.ServeMux
	middlewares []transportcore.Middleware
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() transportcore.Router {
	return &router{
		mux: http.NewServeMux(),
	}
}

// Handle registers handler wrapped in the middleware registered so far.
func (r *router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, transportcore.Chain(handler, r.middlewares...))
}

// HandleFunc registers a handler function for the given pattern.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use applies middleware to all subsequent route registrations.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// ServeHTTP dispatches to the matching route. Unmatched requests get the
// ServeMux 404 or 405 response without running any middleware.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
