package api

import (
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/task"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// Common request/response structures

// TranslateRequest defines the payload for the translation submission
// endpoint.
type TranslateRequest struct {
	Text       string `json:"text"        validate:"required"`
	SourceLang string `json:"source_lang" validate:"required"`
	TargetLang string `json:"target_lang" validate:"required"`

	// Debounce defaults to true; false dispatches immediately instead of
	// waiting out the coalescing window.
	Debounce *bool `json:"debounce,omitempty"`
}

// TranslateResponse acknowledges an accepted submission. The task ID is
// usable immediately for cancellation and status polling, even while the
// submission is still inside its debounce window.
type TranslateResponse struct {
	TaskID task.TaskID `json:"task_id"`
}

// TaskErrorResponse is the client-facing shape of a classified
// translation failure.
type TaskErrorResponse struct {
	Kind      translation.ErrorKind `json:"kind"`
	Message   string                `json:"message"`
	Solution  string                `json:"solution,omitempty"`
	Retryable bool                  `json:"retryable"`
}

// TaskStatusResponse is a point-in-time view of one task.
type TaskStatusResponse struct {
	TaskID  task.TaskID        `json:"task_id"`
	State   task.State         `json:"state"`
	Attempt int                `json:"attempt,omitempty"`
	Result  *task.Result       `json:"result,omitempty"`
	Error   *TaskErrorResponse `json:"error,omitempty"`
}

// CancelResponse reports the outcome of a single-task cancellation.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// CancelAllResponse reports how many tasks a bulk cancellation hit.
type CancelAllResponse struct {
	Cancelled int `json:"cancelled"`
}

// LanguagesResponse lists the languages available for translation.
type LanguagesResponse struct {
	Languages []domain.Language `json:"languages"`
}

// HistoryListResponse wraps a page of history entries.
type HistoryListResponse struct {
	Entries []*domain.HistoryEntry `json:"entries"`
	Count   int                    `json:"count"`
}

// ClearHistoryResponse reports how many entries a clear removed.
type ClearHistoryResponse struct {
	Removed int64 `json:"removed"`
}

// VersionResponse describes the running build and whether a newer
// release is available.
type VersionResponse struct {
	Version       string `json:"version"`
	UpdateStatus  string `json:"update_status"`
	LatestVersion string `json:"latest_version,omitempty"`
	ReleaseURL    string `json:"release_url,omitempty"`
}

// newTaskStatusResponse converts an engine snapshot to its API shape.
func newTaskStatusResponse(snap task.Snapshot) TaskStatusResponse {
	resp := TaskStatusResponse{
		TaskID:  snap.ID,
		State:   snap.State,
		Attempt: snap.Attempt,
		Result:  snap.Result,
	}
	if snap.Err != nil {
		resp.Error = &TaskErrorResponse{
			Kind:      snap.Err.Kind,
			Message:   snap.Err.Message,
			Solution:  snap.Err.Solution,
			Retryable: snap.Err.Retryable,
		}
	}
	return resp
}
