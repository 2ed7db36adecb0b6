package translation

import (
	"context"

	"github.com/hanseo/rosetta-api/internal/domain"
)

// ProgressFunc reports attempt progress as a percentage (0-100) with a
// short status message. Implementations must tolerate a nil ProgressFunc.
type ProgressFunc func(percent int, message string)

// Translator performs one blocking translation call. Implementations
// receive text already validated by the caller and must not run their own
// retry loops: retry policy belongs to the orchestration layer.
type Translator interface {
	// Translate converts text from sourceLang to targetLang, blocking
	// until the result is available or an error occurs. The context
	// carries the attempt deadline.
	Translate(
		ctx context.Context,
		text string,
		sourceLang, targetLang domain.LanguageCode,
		progress ProgressFunc,
	) (string, error)
}
