// Package transport provides the HTTP layer of the resource server.
//
// # Architecture
//
// The transport package adapts the bearer-token authentication core in
// internal/oauth to net/http.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport errors
//	├── context.go                # Context helpers
//	├── wire.go                   # Factory functions
//	├── transportcore/            # Interfaces, context keys, tracking writer
//	└── internal/
//	    ├── http/
//	    │   ├── server.go         # HTTP server with graceful shutdown
//	    │   ├── router.go         # HTTP routing
//	    │   └── response.go       # Error responder with WWW-Authenticate
//	    ├── middleware/
//	    │   ├── extractor.go      # Bearer token extraction
//	    │   ├── auth.go           # Authentication and scope middleware
//	    │   ├── logging.go        # Request ids and request logging
//	    │   └── recovery.go       # Panic recovery
//	    └── handlers/
//	        ├── metadata.go       # /.well-known/oauth-protected-resource
//	        ├── session.go        # /session
//	        └── health.go         # /health
//
// # Bearer Token Usage
//
//   - Tokens are accepted from a single Authorization header only, never
//     from the query string or body.
//   - Every challenge carries realm and the resource_metadata URL.
//   - Authentication failures are reported as invalid_token with one fixed
//     description; the underlying reason is only logged.
//   - Missing credentials get a challenge without an error code.
//   - Insufficient scope is a 403 with error="insufficient_scope" and the
//     required scopes.
//
// # Middleware Chain
//
//  1. Recovery - catches panics and returns 500
//  2. Logging - assigns X-Request-ID and logs request details
//  3. Authentication - validates the Bearer token (protected routes only)
//  4. Scope checking - enforces required scopes
//
// # Error Responses
//
// 401 without credentials:
//
//	HTTP/1.1 401 Unauthorized
//	WWW-Authenticate: Bearer realm="mcp", scope="mcp:read", resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"
//	Content-Type: application/json
//
//	{}
//
// 401 with a rejected token:
//
//	HTTP/1.1 401 Unauthorized
//	WWW-Authenticate: Bearer realm="mcp", error="invalid_token", error_description="The access token is invalid", scope="mcp:read", resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"
//	Content-Type: application/json
//
//	{"error":"invalid_token","error_description":"The access token is invalid"}
//
// 403 with insufficient scope:
//
//	HTTP/1.1 403 Forbidden
//	WWW-Authenticate: Bearer realm="mcp", error="insufficient_scope", error_description="The access token does not grant the required scope", scope="mcp:read", resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"
//
// # Endpoints
//
// Public:
//   - GET /.well-known/oauth-protected-resource - Protected Resource Metadata (RFC 9728)
//   - GET /health - Liveness plus a key-set reachability probe
//
// Protected (mcp:read):
//   - GET /session - The caller's identity, scopes and capabilities
//
// # Context Values
//
// Handlers behind the authentication middleware read the caller with:
//
//	ac, ok := transport.AuthFromContext(r.Context())
//	if ok && ac.HasScope("mcp:write") {
//		// ...
//	}
package transport
