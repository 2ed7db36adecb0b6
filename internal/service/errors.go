package service

import "errors"

// Common sentinel errors for the service layer
var (
	// ErrTaskNotFound indicates that no active task exists under the
	// given ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrServiceClosed indicates that the service has been shut down and
	// no longer accepts work.
	ErrServiceClosed = errors.New("service is shut down")
)
