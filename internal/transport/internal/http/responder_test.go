package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

const testMetadataURL = "https://api.example.com/.well-known/oauth-protected-resource"

func newTestResponder() transportcore.ErrorResponder {
	return NewErrorResponder("mcp", testMetadataURL, nil)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestResponder_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		scope      string
		err        error
		wantHeader string
		wantBody   map[string]string
	}{
		{
			name:       "missing credentials carry no error code",
			err:        transportcore.ErrMissingToken,
			wantHeader: `Bearer realm="mcp", resource_metadata="` + testMetadataURL + `"`,
			wantBody:   map[string]string{},
		},
		{
			name:       "missing credentials with scope hint",
			scope:      "mcp:read",
			err:        fmt.Errorf("authenticate: %w", transportcore.ErrMissingToken),
			wantHeader: `Bearer realm="mcp", scope="mcp:read", resource_metadata="` + testMetadataURL + `"`,
			wantBody:   map[string]string{},
		},
		{
			name: "expired token uses the generic description",
			err:  oauth.ErrExpiredToken,
			wantHeader: `Bearer realm="mcp", error="invalid_token", error_description="The access token is invalid", ` +
				`resource_metadata="` + testMetadataURL + `"`,
			wantBody: map[string]string{
				"error":             "invalid_token",
				"error_description": "The access token is invalid",
			},
		},
		{
			name: "malformed header is an invalid token",
			err:  transportcore.ErrMalformedAuthorization,
			wantHeader: `Bearer realm="mcp", error="invalid_token", error_description="The access token is invalid", ` +
				`resource_metadata="` + testMetadataURL + `"`,
			wantBody: map[string]string{
				"error":             "invalid_token",
				"error_description": "The access token is invalid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			newTestResponder().Unauthorized(w, tt.scope, tt.err)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.Equal(t, tt.wantBody, decodeBody(t, w))
		})
	}
}

func TestResponder_UnauthorizedDoesNotLeakReason(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newTestResponder().Unauthorized(w, "", errors.New("issuer https://evil.example.com is not trusted"))

	assert.NotContains(t, w.Header().Get("WWW-Authenticate"), "evil")
	assert.NotContains(t, w.Body.String(), "evil")
}

func TestResponder_Forbidden(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newTestResponder().Forbidden(w, []string{"mcp:write", "mcp:admin"}, oauth.ErrInsufficientScope)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t,
		`Bearer realm="mcp", error="insufficient_scope", `+
			`error_description="The access token does not grant the required scope", `+
			`scope="mcp:write mcp:admin", resource_metadata="`+testMetadataURL+`"`,
		w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, map[string]string{
		"error":             "insufficient_scope",
		"error_description": "The access token does not grant the required scope",
	}, decodeBody(t, w))
}

func TestResponder_RealmIsEscaped(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewErrorResponder(`my "realm"`, "", nil).Unauthorized(w, "", transportcore.ErrMissingToken)

	assert.Equal(t, `Bearer realm="my \"realm\""`, w.Header().Get("WWW-Authenticate"))
}

func TestResponder_InternalErrorAndBadRequest(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newTestResponder().InternalError(w, errors.New("database on fire"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "server_error", decodeBody(t, w)["error"])
	assert.NotContains(t, w.Body.String(), "database")

	w = httptest.NewRecorder()
	newTestResponder().BadRequest(w, errors.New("bad json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, w)["error"])
}

func TestResponder_NoOpAfterHeadersWritten(t *testing.T) {
	t.Parallel()

	responder := newTestResponder()
	calls := map[string]func(w http.ResponseWriter){
		"unauthorized": func(w http.ResponseWriter) { responder.Unauthorized(w, "", oauth.ErrInvalidToken) },
		"forbidden":    func(w http.ResponseWriter) { responder.Forbidden(w, []string{"mcp:read"}, oauth.ErrInsufficientScope) },
		"internal":     func(w http.ResponseWriter) { responder.InternalError(w, errors.New("boom")) },
		"bad request":  func(w http.ResponseWriter) { responder.BadRequest(w, errors.New("bad")) },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tw := transportcore.Track(rec)
			tw.WriteHeader(http.StatusOK)
			_, _ = tw.Write([]byte("partial"))

			call(tw)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "partial", rec.Body.String())
			assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}
