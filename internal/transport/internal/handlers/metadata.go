package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

// metadataHandler serves OAuth 2.0 Protected Resource Metadata per RFC 9728.
type metadataHandler struct {
	service   oauth.MetadataService
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewMetadataHandler creates a handler for /.well-known/oauth-protected-resource.
// If logger is nil, it uses the default slog logger.
func NewMetadataHandler(service oauth.MetadataService, responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if service == nil {
		panic("service cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &metadataHandler{
		service:   service,
		responder: responder,
		logger:    logger,
	}
}

func (h *metadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	metadata, err := h.service.GetMetadata(r.Context())
	if err != nil {
		h.responder.InternalError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, h.logger, http.StatusOK, metadata)
}
