package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// TaskID identifies one logical translation submission. A task may span
// several attempts; they all share the same TaskID.
type TaskID string

// NewTaskID generates a short unique task identifier.
func NewTaskID() TaskID {
	return TaskID(uuid.New().String()[:8])
}

// State represents the lifecycle state of a task.
type State string

// Possible task states
const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateRetrying  State = "retrying"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// IsTerminal reports whether s is a terminal state.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Result is the payload of a successful attempt.
type Result struct {
	// DetectedLang is the resolved source language: the detected language
	// when the request asked for auto-detection, otherwise the requested
	// source language.
	DetectedLang domain.LanguageCode

	// Text is the translated text.
	Text string
}

// TranslateFunc performs the blocking work of one attempt. The context
// carries the attempt deadline; implementations should pass it through to
// the underlying translator. Retry policy is the orchestrator's concern,
// never the function's.
type TranslateFunc func(
	ctx context.Context,
	req domain.TranslationRequest,
	progress translation.ProgressFunc,
) (Result, error)

// Snapshot is a point-in-time view of a task, safe to hand out across
// goroutines.
type Snapshot struct {
	ID      TaskID                        `json:"task_id"`
	State   State                         `json:"state"`
	Attempt int                           `json:"attempt"`
	Request domain.TranslationRequest     `json:"request"`
	Result  *Result                       `json:"result,omitempty"`
	Err     *translation.TranslationError `json:"error,omitempty"`
}
