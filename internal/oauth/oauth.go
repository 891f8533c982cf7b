// Package oauth is the bearer-token authentication core of the resource
// server: key-set caching, token validation, authorization context,
// scope checks, capability mapping and protected resource metadata.
package oauth

import (
	"context"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/capability"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/jwks"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/metadata"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

type (
	// AuthContext is the per-request authorization context.
	AuthContext = pkgoauth.AuthContext

	// Capabilities lists tools, prompts and resources.
	Capabilities = pkgoauth.Capabilities

	// CapabilityTable maps a scope to the capabilities it unlocks.
	CapabilityTable = capability.Table

	// KeySet is a JSON Web Key Set.
	KeySet = jwks.JWKS

	// KeySetStore persists key-set cache entries.
	KeySetStore = jwks.EntryStore

	// ProtectedResourceMetadata is the RFC 9728 metadata document.
	ProtectedResourceMetadata = metadata.ProtectedResourceMetadata
)

// KeySetCache returns the key set published at an allow-listed URI,
// fetching and revalidating it as needed.
type KeySetCache interface {
	FetchJWKS(ctx context.Context, uri string) (*KeySet, error)
}

// TokenValidator verifies RS256 bearer tokens issued by the trusted issuer.
type TokenValidator interface {
	// ValidateJWT verifies the token and returns its payload unchanged.
	ValidateJWT(ctx context.Context, token string) (map[string]any, error)

	// Authenticate verifies the token and builds the AuthContext.
	Authenticate(ctx context.Context, token string) (*AuthContext, error)
}

// ScopeChecker enforces required scopes.
type ScopeChecker interface {
	// RequireScopes returns an error matching ErrInsufficientScope unless
	// every required scope was granted.
	RequireScopes(ac *AuthContext, required ...string) error
}

// CapabilityMapper resolves granted scopes to capabilities.
type CapabilityMapper interface {
	CapabilitiesForScopes(scopes []string) Capabilities
}

// MetadataService provides Protected Resource Metadata per RFC 9728.
type MetadataService interface {
	// GetMetadata returns the metadata document.
	GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error)

	// GetMetadataURL returns the absolute URL of the metadata document.
	GetMetadataURL() string
}
