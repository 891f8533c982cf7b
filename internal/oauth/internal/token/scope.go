package token

import (
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/oautherr"
	"github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// HasRequiredScopes reports whether every required scope is in granted.
// Matching is exact; an empty requirement is always satisfied.
func HasRequiredScopes(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		set[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// ScopeChecker turns scope checks into insufficient_scope errors.
type ScopeChecker struct{}

// NewScopeChecker creates a new scope checker.
func NewScopeChecker() *ScopeChecker {
	return &ScopeChecker{}
}

// RequireScopes returns an error matching oautherr.ErrInsufficientScope
// unless ac was granted every required scope.
func (s *ScopeChecker) RequireScopes(ac *oauth.AuthContext, required ...string) error {
	var granted []string
	if ac != nil {
		granted = ac.Scopes
	}
	if !HasRequiredScopes(granted, required) {
		return oautherr.NewInsufficientScopeError("RequireScopes", required)
	}
	return nil
}
