package task

import (
	"time"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// EventType identifies a task lifecycle event.
type EventType string

// Lifecycle event types. For one attempt the ordering is always
// started, progress*, (complete|error|retrying), finished; a cancelled
// task emits only finished.
const (
	EventStarted  EventType = "started"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
	EventRetrying EventType = "retrying"
	EventFinished EventType = "finished"
)

// Event is one task lifecycle notification. Only the fields relevant to
// the event type are populated.
type Event struct {
	Type    EventType `json:"type"`
	TaskID  TaskID    `json:"task_id"`
	Attempt int       `json:"attempt,omitempty"`
	Time    time.Time `json:"time"`

	// Progress fields (EventProgress)
	Percent int    `json:"percent,omitempty"`
	Message string `json:"message,omitempty"`

	// Completion fields (EventComplete)
	DetectedLang domain.LanguageCode `json:"detected_lang,omitempty"`
	Text         string              `json:"text,omitempty"`

	// Terminal error (EventError)
	Err *translation.TranslationError `json:"error,omitempty"`

	// Retry fields (EventRetrying)
	MaxAttempts int           `json:"max_attempts,omitempty"`
	Delay       time.Duration `json:"delay,omitempty"`
}

// Listener receives lifecycle events. The orchestrator invokes it from
// its coordinating goroutine, so events for one task arrive in order and
// the listener must not block for long.
type Listener func(Event)

// workerEventType enumerates the raw signals a worker reports back to the
// orchestrator before any retry decision is made.
type workerEventType int

const (
	workerStarted workerEventType = iota
	workerProgress
	workerResult
	workerError
	workerFinished
)

// workerEvent is the cross-thread handoff from a worker goroutine to the
// coordinating goroutine. Events are tagged with task and attempt so the
// orchestrator can drop stale ones after a cancellation or timeout.
type workerEvent struct {
	typ     workerEventType
	taskID  TaskID
	attempt int

	percent int
	message string

	result Result
	err    error
}
