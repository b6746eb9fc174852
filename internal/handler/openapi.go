package handler

import (
	"log/slog"
	"net/http"

	"github.com/staffhub/staffhub/internal/openapi"
)

// OpenAPIHandler serves the OpenAPI document for this server.
type OpenAPIHandler struct {
	version string
	logger  *slog.Logger
}

// NewOpenAPIHandler creates a new OpenAPIHandler.
func NewOpenAPIHandler(version string, logger *slog.Logger) *OpenAPIHandler {
	return &OpenAPIHandler{version: version, logger: logger}
}

// ServeSpec returns the document with the server URL of the request.
// GET /openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	doc, err := openapi.Generate(scheme+"://"+r.Host, h.version)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
