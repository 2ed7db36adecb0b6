package api

import (
	"log/slog"
	"net/http"

	"github.com/hanseo/rosetta-api/internal/api/shared"
	"github.com/hanseo/rosetta-api/internal/update"
)

// SystemHandler serves version and health endpoints.
type SystemHandler struct {
	version string
	checker *update.Checker
	logger  *slog.Logger
}

// NewSystemHandler creates a handler reporting the given build version.
// checker may be nil to disable release checks.
func NewSystemHandler(version string, checker *update.Checker, logger *slog.Logger) *SystemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemHandler{
		version: version,
		checker: checker,
		logger:  logger.With(slog.String("component", "system_handler")),
	}
}

// Version handles GET /api/version. The release check runs inline; its
// failures degrade to "unavailable" rather than failing the request.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	resp := VersionResponse{
		Version:      h.version,
		UpdateStatus: string(update.StatusUnavailable),
	}

	if h.checker != nil {
		result := h.checker.Check(r.Context(), h.version)
		resp.UpdateStatus = string(result.Status)
		resp.LatestVersion = result.LatestVersion
		resp.ReleaseURL = result.ReleaseURL
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health check response", "error", err)
	}
}
