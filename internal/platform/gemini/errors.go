package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyText is returned when the text to translate is empty.
	ErrEmptyText = errors.New("text to translate cannot be empty")

	// ErrInvalidConfig is returned when the translator configuration is
	// incomplete or invalid.
	ErrInvalidConfig = errors.New("invalid translator configuration")

	// ErrInvalidResponse is returned when the API response cannot be used
	// as a translation.
	ErrInvalidResponse = errors.New("invalid response from Gemini API")

	// ErrContentBlocked is returned when the API refuses to translate the
	// text due to safety filters.
	ErrContentBlocked = errors.New("content blocked by safety filters")
)
