package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthError_WWWAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *OAuthError
		want string
	}{
		{
			name: "realm only",
			err:  &OAuthError{Realm: "mcp"},
			want: `Bearer realm="mcp"`,
		},
		{
			name: "empty realm still rendered",
			err:  &OAuthError{ErrorCode: ErrorCodeInvalidToken},
			want: `Bearer realm="", error="invalid_token"`,
		},
		{
			name: "invalid token with description",
			err:  NewOAuthError(ErrorCodeInvalidToken, "The access token is invalid").WithRealm("mcp"),
			want: `Bearer realm="mcp", error="invalid_token", error_description="The access token is invalid"`,
		},
		{
			name: "insufficient scope with metadata",
			err: NewOAuthError(ErrorCodeInsufficientScope, "").
				WithRealm("mcp").
				WithScope("mcp:read mcp:write").
				WithResourceMetadata("https://api.example.com/.well-known/oauth-protected-resource"),
			want: `Bearer realm="mcp", error="insufficient_scope", scope="mcp:read mcp:write", resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"`,
		},
		{
			name: "quote in realm",
			err:  &OAuthError{Realm: `a "b"`},
			want: `Bearer realm="a \"b\""`,
		},
		{
			name: "backslash in description",
			err:  &OAuthError{Realm: "r", ErrorCode: "invalid_token", ErrorDescription: `path C:\tmp`},
			want: `Bearer realm="r", error="invalid_token", error_description="path C:\\tmp"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.WWWAuthenticate())
		})
	}
}

func TestOAuthError_WWWAuthenticateRoundTrip(t *testing.T) {
	t.Parallel()

	hostile := []string{`"`, `\`, `\"`, `a\\"b`, `",error="x`, `plain`}
	for _, v := range hostile {
		e := &OAuthError{Realm: v, ErrorCode: ErrorCodeInvalidToken, ErrorDescription: v}
		params := parseChallenge(t, e.WWWAuthenticate())
		assert.Equal(t, v, params["realm"], "realm %q", v)
		assert.Equal(t, v, params["error_description"], "description %q", v)
		assert.Equal(t, ErrorCodeInvalidToken, params["error"])
		assert.Len(t, params, 3)
	}
}

func TestOAuthError_Body(t *testing.T) {
	t.Parallel()

	full := &OAuthError{
		Realm:            "mcp",
		ErrorCode:        ErrorCodeInsufficientScope,
		ErrorDescription: "needs more",
		Scope:            "mcp:admin",
		ResourceMetadata: "https://x",
	}
	assert.Equal(t, map[string]string{"error": "insufficient_scope", "error_description": "needs more"}, full.Body())
	assert.Empty(t, (&OAuthError{Realm: "mcp"}).Body())
}

func TestOAuthError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invalid_token: bad", NewOAuthError(ErrorCodeInvalidToken, "bad").Error())
	assert.Equal(t, "invalid_request", NewOAuthError(ErrorCodeInvalidRequest, "").Error())
}

// parseChallenge is a minimal RFC 7235 auth-param parser for Bearer challenges.
func parseChallenge(t *testing.T, header string) map[string]string {
	t.Helper()

	rest, ok := strings.CutPrefix(header, "Bearer ")
	require.True(t, ok, "scheme prefix missing in %q", header)

	params := make(map[string]string)
	for len(rest) > 0 {
		eq := strings.IndexByte(rest, '=')
		require.Positive(t, eq, "no '=' in %q", rest)
		key := rest[:eq]
		rest = rest[eq+1:]
		require.True(t, strings.HasPrefix(rest, `"`), "value for %s not quoted", key)
		rest = rest[1:]

		var val strings.Builder
		closed := false
		for i := 0; i < len(rest); i++ {
			c := rest[i]
			if c == '\\' && i+1 < len(rest) {
				val.WriteByte(rest[i+1])
				i++
				continue
			}
			if c == '"' {
				rest = rest[i+1:]
				closed = true
				break
			}
			val.WriteByte(c)
		}
		require.True(t, closed, "unterminated value for %s", key)
		params[key] = val.String()
		rest = strings.TrimPrefix(rest, ", ")
	}
	return params
}
