// Package translation defines the translator contract and the structured
// error model used by the task orchestration layer. Raw failures from a
// translator backend are classified exactly once, at the orchestration
// boundary, into a TranslationError carrying a user-facing cause, a
// suggested remedy and a retryability flag.
package translation

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the category of a translation failure.
type ErrorKind string

// Possible error kinds
const (
	ErrorKindNetwork    ErrorKind = "network"
	ErrorKindMemory     ErrorKind = "memory"
	ErrorKindModel      ErrorKind = "model"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// Sentinel errors translator backends can wrap so the classifier
// recognizes the failure without message matching.
var (
	// ErrModelNotLoaded is returned when translation is attempted before
	// the backend model is ready.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrOutOfMemory is returned when the backend runs out of memory
	// while translating.
	ErrOutOfMemory = errors.New("out of memory")
)

// kindInfo is the fixed user-facing message set for one error kind.
type kindInfo struct {
	cause     string
	solution  string
	retryable bool
}

// kindMessages maps every kind to its cause, solution and retryability.
// Model and validation failures are never retried: repeating them cannot
// change the outcome.
var kindMessages = map[ErrorKind]kindInfo{
	ErrorKindNetwork: {
		cause:     "A network connection problem occurred.",
		solution:  "Check your internet connection and try again shortly.",
		retryable: true,
	},
	ErrorKindMemory: {
		cause:     "The system is low on memory.",
		solution:  "Close other programs or try a shorter text.",
		retryable: true,
	},
	ErrorKindModel: {
		cause:     "The translation model is unavailable.",
		solution:  "Restart the service. If the problem persists, check available disk space (10GB or more).",
		retryable: false,
	},
	ErrorKindTimeout: {
		cause:     "The translation took too long.",
		solution:  "The text may be too long. Split it up or try again shortly.",
		retryable: true,
	},
	ErrorKindValidation: {
		cause:     "There is a problem with the input text.",
		solution:  "Check the text and submit it again.",
		retryable: false,
	},
	ErrorKindUnknown: {
		cause:     "An unexpected error occurred.",
		solution:  "Try again shortly. If the problem persists, restart the service.",
		retryable: true,
	},
}

// TranslationError is the structured form of a failed translation attempt.
// It is immutable and produced exactly once per failure.
type TranslationError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Cause     string    `json:"cause"`
	Solution  string    `json:"solution"`
	Retryable bool      `json:"is_retryable"`

	// err is the original error, if classification started from one.
	err error
}

// newError builds a TranslationError of the given kind around err.
func newError(kind ErrorKind, message string, err error) *TranslationError {
	info := kindMessages[kind]
	return &TranslationError{
		Kind:      kind,
		Message:   message,
		Cause:     info.cause,
		Solution:  info.solution,
		Retryable: info.retryable,
		err:       err,
	}
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the original error, if any.
func (e *TranslationError) Unwrap() error {
	return e.err
}
