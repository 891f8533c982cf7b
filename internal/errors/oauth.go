package errors

import (
	"fmt"
	"strings"
)

// Bearer token error codes from RFC 6750 Section 3.1.
const (
	// ErrorCodeInvalidToken covers every authentication failure: malformed,
	// expired, not yet valid, wrong issuer or audience, unknown key.
	ErrorCodeInvalidToken = "invalid_token"

	// ErrorCodeInsufficientScope indicates the token lacks required scope(s).
	ErrorCodeInsufficientScope = "insufficient_scope"

	// ErrorCodeInvalidRequest indicates the request is malformed.
	ErrorCodeInvalidRequest = "invalid_request"
)

// OAuthError is the client-visible form of an authentication or
// authorization failure. It renders both the WWW-Authenticate challenge and
// the JSON response body.
type OAuthError struct {
	// Realm is the protection space. It is always rendered, even when empty.
	Realm string

	// ErrorCode is an RFC 6750 error code. Empty means the request carried
	// no credentials at all.
	ErrorCode string

	// ErrorDescription is a human-readable description.
	ErrorDescription string

	// Scope is the space-separated list of scopes the resource requires.
	Scope string

	// ResourceMetadata is the RFC 9728 protected resource metadata URL.
	ResourceMetadata string
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	if e.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.ErrorDescription)
	}
	return e.ErrorCode
}

// NewOAuthError creates an OAuthError with the given code and description.
func NewOAuthError(errorCode, errorDescription string) *OAuthError {
	return &OAuthError{
		ErrorCode:        errorCode,
		ErrorDescription: errorDescription,
	}
}

// WithRealm sets the realm and returns the error for chaining.
func (e *OAuthError) WithRealm(realm string) *OAuthError {
	e.Realm = realm
	return e
}

// WithScope sets the scope and returns the error for chaining.
func (e *OAuthError) WithScope(scope string) *OAuthError {
	e.Scope = scope
	return e
}

// WithResourceMetadata sets the resource metadata URL and returns the error
// for chaining.
func (e *OAuthError) WithResourceMetadata(url string) *OAuthError {
	e.ResourceMetadata = url
	return e
}

// Body returns the JSON response body fields. Only error and
// error_description are ever included, and only when set.
func (e *OAuthError) Body() map[string]string {
	body := make(map[string]string, 2)
	if e.ErrorCode != "" {
		body["error"] = e.ErrorCode
	}
	if e.ErrorDescription != "" {
		body["error_description"] = e.ErrorDescription
	}
	return body
}

// WWWAuthenticate renders the challenge per RFC 6750 and RFC 7235:
//
//	Bearer realm="mcp", error="invalid_token", error_description="The access token is invalid"
//
// realm comes first and is always present. The remaining parameters are
// appended in a fixed order when non-empty. Every value is a quoted-string
// with backslash and double quote escaped.
func (e *OAuthError) WWWAuthenticate() string {
	var b strings.Builder
	b.WriteString(`Bearer realm="`)
	b.WriteString(quote(e.Realm))
	b.WriteByte('"')

	params := [...]struct{ key, value string }{
		{"error", e.ErrorCode},
		{"error_description", e.ErrorDescription},
		{"scope", e.Scope},
		{"resource_metadata", e.ResourceMetadata},
	}
	for _, p := range params {
		if p.value == "" {
			continue
		}
		b.WriteString(", ")
		b.WriteString(p.key)
		b.WriteString(`="`)
		b.WriteString(quote(p.value))
		b.WriteByte('"')
	}
	return b.String()
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote escapes s for use inside an HTTP quoted-string.
func quote(s string) string {
	return quoteReplacer.Replace(s)
}
