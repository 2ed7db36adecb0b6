package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for HistoryEntry
var (
	ErrEmptyHistoryID     = errors.New("history entry ID cannot be empty")
	ErrEmptyHistorySource = errors.New("history entry source text cannot be empty")
)

// DefaultPreviewLength is the number of characters shown when listing
// history entries.
const DefaultPreviewLength = 100

// HistoryEntry records one completed translation.
// Entries are kept newest first and bounded by the configured cap.
type HistoryEntry struct {
	ID             string       `json:"id"`
	SourceText     string       `json:"source_text"`
	TranslatedText string       `json:"translated_text"`
	SourceLang     LanguageCode `json:"source_lang"`
	TargetLang     LanguageCode `json:"target_lang"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewHistoryEntry creates a HistoryEntry with a generated ID and the
// current UTC timestamp. Returns an error if validation fails.
func NewHistoryEntry(sourceText, translatedText string, sourceLang, targetLang LanguageCode) (*HistoryEntry, error) {
	entry := &HistoryEntry{
		ID:             uuid.New().String()[:8],
		SourceText:     sourceText,
		TranslatedText: translatedText,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		CreatedAt:      time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the HistoryEntry has valid data.
func (e *HistoryEntry) Validate() error {
	if e.ID == "" {
		return ErrEmptyHistoryID
	}

	if e.SourceText == "" {
		return ErrEmptyHistorySource
	}

	return nil
}

// Preview returns the source text truncated to maxLength characters,
// with an ellipsis when truncated. A non-positive maxLength uses
// DefaultPreviewLength.
func (e *HistoryEntry) Preview(maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultPreviewLength
	}

	runes := []rune(e.SourceText)
	if len(runes) <= maxLength {
		return e.SourceText
	}

	// No room for the ellipsis below four characters; hard-truncate.
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	return string(runes[:maxLength-3]) + "..."
}
