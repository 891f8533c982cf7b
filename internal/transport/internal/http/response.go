package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	ierrors "github.com/jamesprial/mcp-resource-auth/internal/errors"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// Client-visible descriptions. Internal reasons are only logged.
const (
	invalidTokenDescription      = "The access token is invalid"
	insufficientScopeDescription = "The access token does not grant the required scope"
	internalErrorDescription     = "An internal server error occurred"
	badRequestDescription        = "The request is malformed"
)

const errorCodeServerError = "server_error"

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	realm       string
	metadataURL string
	logger      *slog.Logger
}

// NewErrorResponder creates an error responder. realm is rendered in every
// challenge; metadataURL is advertised as resource_metadata per RFC 9728.
// If logger is nil, it uses the default slog logger.
func NewErrorResponder(realm, metadataURL string, logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{
		realm:       realm,
		metadataURL: metadataURL,
		logger:      logger,
	}
}

// Unauthorized sends 401 with a Bearer challenge per RFC 6750 Section 3.
func (e *errorResponder) Unauthorized(w http.ResponseWriter, scope string, err error) {
	challenge := e.challenge().WithScope(scope)
	if !errors.Is(err, transportcore.ErrMissingToken) {
		challenge.ErrorCode = ierrors.ErrorCodeInvalidToken
		challenge.ErrorDescription = invalidTokenDescription
	}

	if !e.writeChallenge(w, http.StatusUnauthorized, challenge) {
		e.logger.Error("response already started, dropping 401", "error", err)
		return
	}
	e.logger.Warn("unauthorized request",
		"error", err,
		"reason", oauth.FailureReason(err),
	)
}

// Forbidden sends 403 with error="insufficient_scope" per RFC 6750 Section 3.1.
func (e *errorResponder) Forbidden(w http.ResponseWriter, requiredScopes []string, err error) {
	challenge := e.challenge().WithScope(strings.Join(requiredScopes, " "))
	challenge.ErrorCode = ierrors.ErrorCodeInsufficientScope
	challenge.ErrorDescription = insufficientScopeDescription

	if !e.writeChallenge(w, http.StatusForbidden, challenge) {
		e.logger.Error("response already started, dropping 403", "error", err)
		return
	}
	e.logger.Warn("forbidden request - insufficient scope",
		"error", err,
		"required_scopes", requiredScopes,
	)
}

// InternalError sends 500 with a JSON body.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	if transportcore.HeaderWritten(w) {
		e.logger.Error("response already started, dropping 500", "error", err)
		return
	}
	e.logger.Error("internal server error", "error", err)
	e.writeBody(w, http.StatusInternalServerError,
		ierrors.NewOAuthError(errorCodeServerError, internalErrorDescription))
}

// BadRequest sends 400 with a JSON body.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	if transportcore.HeaderWritten(w) {
		e.logger.Error("response already started, dropping 400", "error", err)
		return
	}
	e.logger.Warn("bad request", "error", err)
	e.writeBody(w, http.StatusBadRequest,
		ierrors.NewOAuthError(ierrors.ErrorCodeInvalidRequest, badRequestDescription))
}

func (e *errorResponder) challenge() *ierrors.OAuthError {
	return (&ierrors.OAuthError{}).
		WithRealm(e.realm).
		WithResourceMetadata(e.metadataURL)
}

// writeChallenge reports false if the header had already been sent.
func (e *errorResponder) writeChallenge(w http.ResponseWriter, status int, challenge *ierrors.OAuthError) bool {
	if transportcore.HeaderWritten(w) {
		return false
	}
	w.Header().Set(pkgoauth.HeaderWWWAuthenticate, challenge.WWWAuthenticate())
	e.writeBody(w, status, challenge)
	return true
}

func (e *errorResponder) writeBody(w http.ResponseWriter, status int, oerr *ierrors.OAuthError) {
	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(oerr.Body()); err != nil {
		e.logger.Error("failed to encode error response", "error", err)
	}
}
