package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/mcp-resource-auth/internal/config"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/internal/mocks"
)

// stubKeySets serves a fixed key set or error.
type stubKeySets struct {
	err error
}

func (s stubKeySets) FetchJWKS(context.Context, string) (*oauth.KeySet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &oauth.KeySet{}, nil
}

func testServices(keyErr error) *oauth.Services {
	return &oauth.Services{
		KeySets: stubKeySets{err: keyErr},
		Validator: mocks.StaticValidator("reader", &oauth.AuthContext{
			UserID: "user-1",
			Scopes: []string{"mcp:read"},
		}),
		Scopes:       oauth.NewScopeChecker(),
		Capabilities: oauth.NewCapabilityMapper(oauth.DefaultCapabilityTable()),
		Metadata:     &mocks.MetadataService{},
	}
}

func testServerConfig() *config.Config {
	return &config.Config{Addr: "127.0.0.1:0", Realm: "test", JWKSURI: "https://auth.example.com/jwks.json"}
}

func TestNewTransportServices_Validation(t *testing.T) {
	t.Parallel()

	incomplete := testServices(nil)
	incomplete.Scopes = nil

	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil config", cfg: nil},
		{name: "nil server config", cfg: &Config{OAuth: testServices(nil)}},
		{name: "nil oauth services", cfg: &Config{ServerConfig: testServerConfig()}},
		{name: "incomplete oauth services", cfg: &Config{ServerConfig: testServerConfig(), OAuth: incomplete}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, router, err := NewTransportServices(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, server)
			assert.Nil(t, router)
		})
	}
}

func TestNewTransportServices_Routes(t *testing.T) {
	t.Parallel()

	server, router, err := NewTransportServices(&Config{
		ServerConfig: testServerConfig(),
		OAuth:        testServices(nil),
	})
	require.NoError(t, err)
	require.NotNil(t, server)

	tests := []struct {
		name          string
		path          string
		authorization string
		wantStatus    int
	}{
		{name: "metadata is public", path: "/.well-known/oauth-protected-resource", wantStatus: http.StatusOK},
		{name: "health is public", path: "/health", wantStatus: http.StatusOK},
		{name: "session needs a token", path: "/session", wantStatus: http.StatusUnauthorized},
		{name: "session rejects unknown token", path: "/session", authorization: "Bearer other", wantStatus: http.StatusUnauthorized},
		{name: "session with token", path: "/session", authorization: "Bearer reader", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), `realm="test"`)
			}
		})
	}
}

func TestNewTransportServices_HealthReportsKeySetOutage(t *testing.T) {
	t.Parallel()

	_, router, err := NewTransportServices(&Config{
		ServerConfig: testServerConfig(),
		OAuth:        testServices(oauth.ErrJWKSFetchFailed),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"jwks":"unavailable"}}`, w.Body.String())
}

func TestKeySetProbe(t *testing.T) {
	t.Parallel()

	assert.NoError(t, KeySetProbe(stubKeySets{}, "https://x")(context.Background()))

	boom := errors.New("boom")
	assert.ErrorIs(t, KeySetProbe(stubKeySets{err: boom}, "https://x")(context.Background()), boom)
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	token, ok := ExtractBearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ac := &oauth.AuthContext{UserID: "u"}
	got, ok := AuthFromContext(ContextWithAuth(context.Background(), ac))
	require.True(t, ok)
	assert.Same(t, ac, got)
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
