package middleware

import (
	"net/http"
	"regexp"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// bearerPattern matches "Bearer <b64token>" per RFC 6750 Section 2.1. The
// scheme is case-insensitive; exactly one space separates it from the token.
var bearerPattern = regexp.MustCompile(`^(?i:` + pkgoauth.BearerToken + `) ([A-Za-z0-9\-._~+/]+=*)$`)

// ExtractBearerToken returns the access token from the request's
// Authorization header. The header must occur exactly once and hold a
// single well-formed Bearer credential. The token is returned verbatim.
func ExtractBearerToken(r *http.Request) (string, bool) {
	values := r.Header.Values(pkgoauth.HeaderAuthorization)
	if len(values) != 1 {
		return "", false
	}
	return ParseBearer(values[0])
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, bool) {
	m := bearerPattern.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractionError distinguishes an absent header from an unusable one.
func extractionError(r *http.Request) error {
	if len(r.Header.Values(pkgoauth.HeaderAuthorization)) == 0 {
		return transportcore.ErrMissingToken
	}
	return transportcore.ErrMalformedAuthorization
}
