// Package oauth provides the types and constants shared between the
// resource server's authentication core and the applications that host it.
package oauth

// Scopes understood by the default capability table.
const (
	// ScopeRead allows reading MCP resources.
	ScopeRead = "mcp:read"

	// ScopeWrite allows modifying MCP resources.
	ScopeWrite = "mcp:write"

	// ScopeAdmin allows administrative operations.
	ScopeAdmin = "mcp:admin"

	// ScopeProfile releases the caller's display name.
	ScopeProfile = "profile"

	// ScopeEmail releases the caller's email address.
	ScopeEmail = "email"
)

// BearerToken is the RFC 6750 authentication scheme.
const BearerToken = "Bearer"

// HTTP header names.
const (
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"
	HeaderContentType     = "Content-Type"
	HeaderRequestID       = "X-Request-ID"
)

// ContentTypeJSON is the application/json content type.
const ContentTypeJSON = "application/json"

// Capabilities lists the MCP tools, prompts and resources a caller may use.
// Each list is sorted and free of duplicates.
type Capabilities struct {
	Tools     []string `json:"tools" yaml:"tools"`
	Prompts   []string `json:"prompts" yaml:"prompts"`
	Resources []string `json:"resources" yaml:"resources"`
}
