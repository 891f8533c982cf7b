package token

import (
	"strings"

	"github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// scopeClaims lists the claims that may carry granted scopes, in order of
// precedence. The first one present is used even if it is empty.
var scopeClaims = [...]string{"scope", "scp", "scopes"}

// NewAuthContext maps a validated payload to an AuthContext. It performs no
// validation of its own.
func NewAuthContext(claims map[string]any) *oauth.AuthContext {
	username := stringClaim(claims, "preferred_username")
	if username == "" {
		username = stringClaim(claims, "username")
	}

	return &oauth.AuthContext{
		UserID:      stringClaim(claims, "sub"),
		Username:    username,
		DisplayName: stringClaim(claims, "name"),
		Email:       stringClaim(claims, "email"),
		Scopes:      ParseScopes(claims),
		Issuer:      stringClaim(claims, "iss"),
		Audience:    stringList(claims["aud"]),
		TokenID:     stringClaim(claims, "jti"),
		IssuedAt:    timeClaim(claims, "iat"),
		NotBefore:   timeClaim(claims, "nbf"),
		ExpiresAt:   timeClaim(claims, "exp"),
		Claims:      claims,
	}
}

// ParseScopes returns the granted scopes. A string claim is split on
// whitespace; an array claim contributes its string members. No scope claim
// yields an empty, non-nil slice.
func ParseScopes(claims map[string]any) []string {
	for _, name := range scopeClaims {
		v, ok := claims[name]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			return strings.Fields(s)
		}
		return stringList(v)
	}
	return []string{}
}
