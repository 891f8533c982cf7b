package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		headers   []string
		wantToken string
		wantOK    bool
	}{
		{name: "canonical", headers: []string{"Bearer abc.def.ghi"}, wantToken: "abc.def.ghi", wantOK: true},
		{name: "lowercase scheme", headers: []string{"bearer abc"}, wantToken: "abc", wantOK: true},
		{name: "mixed case scheme", headers: []string{"BeArEr abc"}, wantToken: "abc", wantOK: true},
		{name: "b64token characters", headers: []string{"Bearer A-z0_9.~+/x=="}, wantToken: "A-z0_9.~+/x==", wantOK: true},
		{name: "missing header"},
		{name: "empty header", headers: []string{""}},
		{name: "scheme only", headers: []string{"Bearer"}},
		{name: "scheme and space", headers: []string{"Bearer "}},
		{name: "two spaces", headers: []string{"Bearer  abc"}},
		{name: "tab separator", headers: []string{"Bearer\tabc"}},
		{name: "trailing space", headers: []string{"Bearer abc "}},
		{name: "leading space", headers: []string{" Bearer abc"}},
		{name: "basic scheme", headers: []string{"Basic dXNlcjpwYXNz"}},
		{name: "token with space", headers: []string{"Bearer abc def"}},
		{name: "padding in middle", headers: []string{"Bearer ab=c"}},
		{name: "only padding", headers: []string{"Bearer =="}},
		{name: "illegal character", headers: []string{"Bearer abc,def"}},
		{name: "repeated header", headers: []string{"Bearer abc", "Bearer abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, h := range tt.headers {
				req.Header.Add("Authorization", h)
			}

			token, ok := ExtractBearerToken(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestExtractionError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.ErrorIs(t, extractionError(req), transportcore.ErrMissingToken)

	req.Header.Set("Authorization", "Basic abc")
	assert.ErrorIs(t, extractionError(req), transportcore.ErrMalformedAuthorization)
}
