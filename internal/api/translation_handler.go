package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanseo/rosetta-api/internal/api/shared"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/service"
	"github.com/hanseo/rosetta-api/internal/task"
)

// TranslationHandler exposes the translation engine over HTTP.
type TranslationHandler struct {
	service service.TranslationService
	logger  *slog.Logger
}

// NewTranslationHandler creates a handler backed by the given service.
func NewTranslationHandler(svc service.TranslationService, logger *slog.Logger) *TranslationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslationHandler{
		service: svc,
		logger:  logger.With(slog.String("component", "translation_handler")),
	}
}

// Translate handles POST /api/translations. The submission is debounced:
// a rapid follow-up replaces it, and the response's task ID goes stale.
func (h *TranslationHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var payload TranslateRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	req, err := domain.NewTranslationRequest(
		payload.Text,
		domain.LanguageCode(payload.SourceLang),
		domain.LanguageCode(payload.TargetLang),
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	submit := h.service.Submit
	if payload.Debounce != nil && !*payload.Debounce {
		submit = h.service.SubmitImmediate
	}

	id, err := submit(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TranslateResponse{TaskID: id})
}

// GetTask handles GET /api/translations/{id}.
func (h *TranslationHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := task.TaskID(chi.URLParam(r, "id"))

	snap, ok := h.service.Snapshot(id)
	if !ok {
		HandleAPIError(w, r, service.ErrTaskNotFound, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskStatusResponse(snap))
}

// CancelTask handles DELETE /api/translations/{id}. Cancelling a finished
// or unknown task is not an error; the response says nothing was hit.
func (h *TranslationHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id := task.TaskID(chi.URLParam(r, "id"))

	cancelled := h.service.Cancel(id)
	h.logger.Debug("cancel requested", "task_id", id, "cancelled", cancelled)

	shared.RespondWithJSON(w, r, http.StatusOK, CancelResponse{Cancelled: cancelled})
}

// CancelAll handles DELETE /api/translations.
func (h *TranslationHandler) CancelAll(w http.ResponseWriter, r *http.Request) {
	cancelled := h.service.CancelAll()
	h.logger.Debug("cancel all requested", "cancelled", cancelled)

	shared.RespondWithJSON(w, r, http.StatusOK, CancelAllResponse{Cancelled: cancelled})
}

// Languages handles GET /api/languages.
func (h *TranslationHandler) Languages(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, LanguagesResponse{
		Languages: h.service.Languages(),
	})
}

// StreamEvents handles GET /api/events: a server-sent event stream of
// every task lifecycle event, ending when the client disconnects.
func (h *TranslationHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	h.streamEvents(w, r, "")
}

// StreamTaskEvents handles GET /api/translations/{id}/events: the event
// stream for one task, ending when the task reaches a terminal state.
// Tasks the service no longer tracks get a 404 instead of an idle stream.
func (h *TranslationHandler) StreamTaskEvents(w http.ResponseWriter, r *http.Request) {
	h.streamEvents(w, r, task.TaskID(chi.URLParam(r, "id")))
}

// streamEvents writes task events as SSE frames. An empty filter streams
// every task.
func (h *TranslationHandler) streamEvents(w http.ResponseWriter, r *http.Request, filter task.TaskID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	events, unsubscribe := h.service.Subscribe()
	defer unsubscribe()

	// Subscribing first closes the gap between the check and the loop.
	// A task the service no longer tracks is unknown or already done;
	// either way its stream would never carry another event.
	if filter != "" {
		if _, ok := h.service.Snapshot(filter); !ok {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// A retrying task emits finished per attempt; the stream only ends
	// on the finished that follows a terminal outcome.
	retrying := false
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if filter != "" && ev.TaskID != filter {
				continue
			}

			if err := writeSSE(w, ev); err != nil {
				h.logger.Debug("event stream write failed", "error", err)
				return
			}
			flusher.Flush()

			switch ev.Type {
			case task.EventRetrying:
				retrying = true
			case task.EventFinished:
				if filter != "" && !retrying {
					return
				}
				retrying = false
			}
		}
	}
}

// writeSSE writes one event as an SSE data frame.
func writeSSE(w http.ResponseWriter, ev task.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
