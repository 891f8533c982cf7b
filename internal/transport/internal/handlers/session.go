package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// sessionResponse describes the authenticated caller. display_name and
// email are released only to tokens holding the profile and email scopes.
type sessionResponse struct {
	UserID       string                `json:"user_id"`
	Username     string                `json:"username,omitempty"`
	DisplayName  string                `json:"display_name,omitempty"`
	Email        string                `json:"email,omitempty"`
	Scopes       []string              `json:"scopes"`
	Issuer       string                `json:"issuer"`
	Audience     []string              `json:"audience"`
	TokenID      string                `json:"token_id,omitempty"`
	ExpiresAt    *time.Time            `json:"expires_at,omitempty"`
	Capabilities pkgoauth.Capabilities `json:"capabilities"`
}

// sessionHandler reports who the caller is and what its token unlocks.
type sessionHandler struct {
	capabilities oauth.CapabilityMapper
	responder    transportcore.ErrorResponder
	logger       *slog.Logger
}

// NewSessionHandler creates the /session handler. It must run behind the
// authentication middleware. If logger is nil, it uses the default slog logger.
func NewSessionHandler(capabilities oauth.CapabilityMapper, responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if capabilities == nil {
		panic("capability mapper cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionHandler{
		capabilities: capabilities,
		responder:    responder,
		logger:       logger,
	}
}

func (h *sessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	ac, ok := transportcore.AuthFromContext(r.Context())
	if !ok {
		h.responder.InternalError(w, errors.New("session handler reached without authentication"))
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, h.logger, http.StatusOK, h.describe(ac))
}

func (h *sessionHandler) describe(ac *oauth.AuthContext) sessionResponse {
	resp := sessionResponse{
		UserID:       ac.UserID,
		Username:     ac.Username,
		Scopes:       nonNil(ac.Scopes),
		Issuer:       ac.Issuer,
		Audience:     nonNil(ac.Audience),
		TokenID:      ac.TokenID,
		Capabilities: h.capabilities.CapabilitiesForScopes(ac.Scopes),
	}
	if ac.HasScope(pkgoauth.ScopeProfile) {
		resp.DisplayName = ac.DisplayName
	}
	if ac.HasScope(pkgoauth.ScopeEmail) {
		resp.Email = ac.Email
	}
	if !ac.ExpiresAt.IsZero() {
		exp := ac.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
