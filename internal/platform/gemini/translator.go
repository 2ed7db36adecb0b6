package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/hanseo/rosetta-api/internal/config"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// Translator implements the translation.Translator interface using
// Google's Gemini API. It performs exactly one API call per Translate
// invocation; retrying failed attempts is the orchestration layer's job.
type Translator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewTranslator creates a new instance of Translator with the provided
// dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing the API key and model name
//
// Returns:
//   - A properly initialized Translator or an error if initialization fails
func NewTranslator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Translator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &Translator{
		logger: logger.With(slog.String("component", "gemini_translator")),
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Ensure Translator implements the translation.Translator interface
var _ translation.Translator = (*Translator)(nil)

// Translate implements translation.Translator. Progress is reported at
// coarse milestones; the call itself blocks until the API responds or ctx
// expires.
func (t *Translator) Translate(
	ctx context.Context,
	text string,
	sourceLang, targetLang domain.LanguageCode,
	progress translation.ProgressFunc,
) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	report(progress, 10, "Preparing translation")
	prompt := buildPrompt(text, sourceLang, targetLang)

	t.logger.DebugContext(ctx, "Making Gemini API call",
		"model", t.model,
		"source_lang", sourceLang,
		"target_lang", targetLang,
		"text_length", len(text))

	report(progress, 30, "Translating")
	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt), nil)
	if err != nil {
		t.logger.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return "", fmt.Errorf("gemini translation failed: %w", err)
	}

	report(progress, 90, "Processing response")
	translated, err := extractText(resp)
	if err != nil {
		t.logger.ErrorContext(ctx, "Gemini response unusable", "error", err)
		return "", err
	}

	report(progress, 100, "Done")
	return translated, nil
}

// buildPrompt produces the instruction sent to the model. The model is
// told to return only the translation so the raw response text is usable
// without post-processing.
func buildPrompt(text string, sourceLang, targetLang domain.LanguageCode) string {
	target := languageName(targetLang)

	var b strings.Builder
	if sourceLang == domain.LanguageAuto {
		fmt.Fprintf(&b, "Translate the following text to %s.", target)
	} else {
		fmt.Fprintf(&b, "Translate the following text from %s to %s.",
			languageName(sourceLang), target)
	}
	b.WriteString(" Output only the translated text with no explanation, no quotes and no formatting.\n\n")
	b.WriteString(text)
	return b.String()
}

// languageName resolves a code to its English name, falling back to the
// raw code for anything unregistered.
func languageName(code domain.LanguageCode) string {
	if lang, ok := domain.GetLanguage(code); ok {
		return lang.Name
	}
	return string(code)
}

// extractText pulls the translated text out of the API response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	translated := strings.TrimSpace(text.String())
	if translated == "" {
		return "", fmt.Errorf("%w: empty translation", ErrInvalidResponse)
	}
	return translated, nil
}

// report invokes a progress callback when one is set.
func report(progress translation.ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}
