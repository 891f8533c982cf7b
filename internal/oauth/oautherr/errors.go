// Package oautherr defines the token and key-set error taxonomy and the
// constructors that build DomainErrors from it. It is separate from
// internal/oauth so the internal packages can use it without import cycles.
package oautherr

import (
	"errors"
	"fmt"
	"strings"

	ierrors "github.com/jamesprial/mcp-resource-auth/internal/errors"
)

// Error taxonomy. Every error returned by the validator or the key-set cache
// matches exactly one of these with errors.Is, except JWKS failures surfaced
// through the validator, which match both ErrInvalidToken and the JWKS cause.
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token expired")
	ErrTokenNotActive    = errors.New("token not yet valid")
	ErrInsufficientScope = errors.New("insufficient scope")
	ErrJWKSFetchFailed   = errors.New("jwks fetch failed")
	ErrInvalidJWKSFormat = errors.New("invalid jwks format")
)

// Reasons are recorded under the "reason" context key for logging. They are
// never sent to clients.
const (
	ReasonMalformed        = "malformed_token"
	ReasonUnsupportedAlg   = "unsupported_algorithm"
	ReasonUnsupportedType  = "unsupported_type"
	ReasonMissingKeyID     = "missing_kid"
	ReasonCriticalHeader   = "critical_header"
	ReasonJWKSUnavailable  = "jwks_unavailable"
	ReasonKeyNotFound      = "key_not_found"
	ReasonInvalidKey       = "invalid_key"
	ReasonInvalidSignature = "invalid_signature"
	ReasonInvalidIssuer    = "invalid_issuer"
	ReasonInvalidAudience  = "invalid_audience"
	ReasonMissingClaim     = "missing_claim"
	ReasonExpired          = "expired_token"
	ReasonNotActive        = "token_not_active"
	ReasonIssuedInFuture   = "issued_in_future"
	ReasonHostNotAllowed   = "host_not_allowed"
	ReasonHTTPStatus       = "unexpected_status"
	ReasonTransport        = "transport_error"
)

const (
	domainOAuth = "oauth"
	domainJWKS  = "jwks"
)

// NewInvalidTokenError creates an invalid-token error. cause may be nil.
func NewInvalidTokenError(op, reason string, cause error) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized, wrap(ErrInvalidToken, cause)).
		WithContext("oauth_error", ierrors.ErrorCodeInvalidToken).
		WithContext("reason", reason)
}

// NewTokenExpiredError creates an error for a token past exp.
func NewTokenExpiredError(op string, exp, now int64) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized,
		fmt.Errorf("%w: exp %d, now %d", ErrExpiredToken, exp, now)).
		WithContext("oauth_error", ierrors.ErrorCodeInvalidToken).
		WithContext("reason", ReasonExpired)
}

// NewTokenNotActiveError creates an error for a token before nbf.
func NewTokenNotActiveError(op string, nbf, now int64) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized,
		fmt.Errorf("%w: nbf %d, now %d", ErrTokenNotActive, nbf, now)).
		WithContext("oauth_error", ierrors.ErrorCodeInvalidToken).
		WithContext("reason", ReasonNotActive)
}

// NewInvalidIssuerError creates an invalid-token error for an iss mismatch.
func NewInvalidIssuerError(op, expected string, actual any) *ierrors.DomainError {
	return NewInvalidTokenError(op, ReasonInvalidIssuer, fmt.Errorf("issuer %v", actual)).
		WithContext("expected_issuer", expected)
}

// NewInvalidAudienceError creates an invalid-token error for an aud mismatch.
func NewInvalidAudienceError(op, expected string, actual any) *ierrors.DomainError {
	return NewInvalidTokenError(op, ReasonInvalidAudience, fmt.Errorf("audience %v", actual)).
		WithContext("expected_audience", expected)
}

// NewKeyNotFoundError creates an invalid-token error for an unknown kid.
func NewKeyNotFoundError(op, keyID string) *ierrors.DomainError {
	return NewInvalidTokenError(op, ReasonKeyNotFound, nil).
		WithContext("key_id", keyID)
}

// NewInsufficientScopeError creates a 403-class error listing the scopes the
// operation requires.
func NewInsufficientScopeError(op string, required []string) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrForbidden,
		fmt.Errorf("%w: requires %s", ErrInsufficientScope, strings.Join(required, " "))).
		WithContext("oauth_error", ierrors.ErrorCodeInsufficientScope).
		WithContext("required_scopes", required)
}

// NewJWKSFetchError creates a key-set fetch failure.
func NewJWKSFetchError(op, uri, reason string, cause error) *ierrors.DomainError {
	return ierrors.New(domainJWKS, op, ierrors.ErrInternal, wrap(ErrJWKSFetchFailed, cause)).
		WithContext("jwks_uri", uri).
		WithContext("reason", reason)
}

// NewInvalidJWKSFormatError creates an error for a key-set document that is
// not {"keys": [...]}.
func NewInvalidJWKSFormatError(op, uri string, cause error) *ierrors.DomainError {
	return ierrors.New(domainJWKS, op, ierrors.ErrInternal, wrap(ErrInvalidJWKSFormat, cause)).
		WithContext("jwks_uri", uri).
		WithContext("reason", "invalid_format")
}

// Reason returns the diagnostic reason recorded on err, or "" if none.
func Reason(err error) string {
	v, ok := ierrors.ContextValue(err, "reason")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
