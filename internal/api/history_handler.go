package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hanseo/rosetta-api/internal/api/shared"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/service"
)

// HistoryHandler exposes the translation history over HTTP.
type HistoryHandler struct {
	service service.HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a handler backed by the given service.
func NewHistoryHandler(svc service.HistoryService, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{
		service: svc,
		logger:  logger.With(slog.String("component", "history_handler")),
	}
}

// List handles GET /api/history. The optional q parameter searches both
// source and translated text; limit caps the page size.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	query := r.URL.Query().Get("q")

	var entries []*domain.HistoryEntry
	var err error
	if query != "" {
		entries, err = h.service.Search(r.Context(), query, limit)
	} else {
		entries, err = h.service.List(r.Context(), limit)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HistoryListResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// Get handles GET /api/history/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// Delete handles DELETE /api/history/{id}.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/history.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Clear(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ClearHistoryResponse{Removed: removed})
}
