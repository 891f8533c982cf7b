package oauth

import (
	"slices"
	"time"
)

// AuthContext is the authorization context derived from a validated access
// token. It is built once per request and never shared between requests.
type AuthContext struct {
	// UserID is the sub claim.
	UserID string

	// Username is preferred_username, falling back to username.
	Username string

	// DisplayName and Email come from the name and email claims. They are
	// released to clients only with the profile and email scopes.
	DisplayName string
	Email       string

	// Scopes are the granted scopes, in token order.
	Scopes []string

	Issuer string

	// Audience holds aud; a string aud becomes a one-element list.
	Audience []string

	// TokenID is the jti claim.
	TokenID string

	// Zero when the corresponding claim is absent.
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time

	// Claims is the validated payload, unmodified.
	Claims map[string]any
}

// HasScope reports whether scope was granted.
func (a *AuthContext) HasScope(scope string) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.Scopes, scope)
}
