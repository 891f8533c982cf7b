// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
)

// ErrNotConfigured is returned by mocks whose behaviour was not set.
var ErrNotConfigured = errors.New("mock not configured")

// TokenValidator is a mock implementation of oauth.TokenValidator.
type TokenValidator struct {
	AuthenticateFunc func(ctx context.Context, token string) (*oauth.AuthContext, error)

	mu     sync.Mutex
	tokens []string
}

// ValidateJWT returns the claims of the AuthContext produced by AuthenticateFunc.
func (m *TokenValidator) ValidateJWT(ctx context.Context, token string) (map[string]any, error) {
	ac, err := m.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return ac.Claims, nil
}

// Authenticate records token and calls AuthenticateFunc.
func (m *TokenValidator) Authenticate(ctx context.Context, token string) (*oauth.AuthContext, error) {
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()

	if m.AuthenticateFunc == nil {
		return nil, ErrNotConfigured
	}
	return m.AuthenticateFunc(ctx, token)
}

// Tokens returns every token passed to Authenticate, in order.
func (m *TokenValidator) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

// StaticValidator accepts only token and returns ac for it.
func StaticValidator(token string, ac *oauth.AuthContext) *TokenValidator {
	return &TokenValidator{
		AuthenticateFunc: func(_ context.Context, got string) (*oauth.AuthContext, error) {
			if got != token {
				return nil, oauth.ErrInvalidToken
			}
			return ac, nil
		},
	}
}

// MetadataService is a mock implementation of oauth.MetadataService.
type MetadataService struct {
	GetMetadataFunc    func(ctx context.Context) (*oauth.ProtectedResourceMetadata, error)
	GetMetadataURLFunc func() string
}

// GetMetadata calls the mock GetMetadataFunc.
func (m *MetadataService) GetMetadata(ctx context.Context) (*oauth.ProtectedResourceMetadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx)
	}
	return &oauth.ProtectedResourceMetadata{}, nil
}

// GetMetadataURL calls the mock GetMetadataURLFunc.
func (m *MetadataService) GetMetadataURL() string {
	if m.GetMetadataURLFunc != nil {
		return m.GetMetadataURLFunc()
	}
	return "https://example.com/.well-known/oauth-protected-resource"
}

// ErrorResponder records calls and writes minimal responses.
type ErrorResponder struct {
	mu sync.Mutex

	UnauthorizedCalled bool
	UnauthorizedScope  string
	UnauthorizedErr    error
	ForbiddenCalled    bool
	ForbiddenScopes    []string
	ForbiddenErr       error
	InternalCalled     bool
	InternalErr        error
	BadRequestCalled   bool
	BadRequestErr      error
}

// Unauthorized records the call and writes a 401 response.
func (m *ErrorResponder) Unauthorized(w http.ResponseWriter, scope string, err error) {
	m.mu.Lock()
	m.UnauthorizedCalled = true
	m.UnauthorizedScope = scope
	m.UnauthorizedErr = err
	m.mu.Unlock()

	w.Header().Set("WWW-Authenticate", `Bearer realm="test"`)
	w.WriteHeader(http.StatusUnauthorized)
}

// Forbidden records the call and writes a 403 response.
func (m *ErrorResponder) Forbidden(w http.ResponseWriter, requiredScopes []string, err error) {
	m.mu.Lock()
	m.ForbiddenCalled = true
	m.ForbiddenScopes = requiredScopes
	m.ForbiddenErr = err
	m.mu.Unlock()

	w.Header().Set("WWW-Authenticate",
		`Bearer realm="test", error="insufficient_scope", scope="`+strings.Join(requiredScopes, " ")+`"`)
	w.WriteHeader(http.StatusForbidden)
}

// InternalError records the call and writes a 500 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, err error) {
	m.mu.Lock()
	m.InternalCalled = true
	m.InternalErr = err
	m.mu.Unlock()

	w.WriteHeader(http.StatusInternalServerError)
}

// BadRequest records the call and writes a 400 response.
func (m *ErrorResponder) BadRequest(w http.ResponseWriter, err error) {
	m.mu.Lock()
	m.BadRequestCalled = true
	m.BadRequestErr = err
	m.mu.Unlock()

	w.WriteHeader(http.StatusBadRequest)
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UnauthorizedCalled = false
	m.UnauthorizedScope = ""
	m.UnauthorizedErr = nil
	m.ForbiddenCalled = false
	m.ForbiddenScopes = nil
	m.ForbiddenErr = nil
	m.InternalCalled = false
	m.InternalErr = nil
	m.BadRequestCalled = false
	m.BadRequestErr = nil
}
