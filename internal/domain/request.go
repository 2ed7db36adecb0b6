package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxTextLength is the maximum number of runes accepted for translation.
// Longer inputs degrade model latency past usable interactive thresholds.
const MaxTextLength = 2000

// Common validation errors for TranslationRequest
var (
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrTextTooLong         = errors.New("text too long")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidTargetAuto   = errors.New("target language cannot be auto")
)

// TranslationRequest is one logical translation submission.
// It is immutable once created; retries reuse the same request.
type TranslationRequest struct {
	Text       string       `json:"text"`
	SourceLang LanguageCode `json:"source_lang"`
	TargetLang LanguageCode `json:"target_lang"`
}

// NewTranslationRequest validates the inputs and returns a request.
// Validation failures here are terminal: they are reported to the caller
// synchronously and never reach the retry loop.
func NewTranslationRequest(text string, sourceLang, targetLang LanguageCode) (TranslationRequest, error) {
	req := TranslationRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}

	if err := req.Validate(); err != nil {
		return TranslationRequest{}, err
	}

	return req, nil
}

// Validate checks the request against the language registry and text limits.
func (r TranslationRequest) Validate() error {
	if r.Text == "" {
		return ErrEmptyText
	}

	if n := utf8.RuneCountInString(r.Text); n > MaxTextLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrTextTooLong, n, MaxTextLength)
	}

	if !IsSupportedLanguage(r.SourceLang) {
		return fmt.Errorf("%w: source %q", ErrUnsupportedLanguage, r.SourceLang)
	}

	if r.TargetLang == LanguageAuto {
		return ErrInvalidTargetAuto
	}

	if !IsSupportedLanguage(r.TargetLang) {
		return fmt.Errorf("%w: target %q", ErrUnsupportedLanguage, r.TargetLang)
	}

	return nil
}
