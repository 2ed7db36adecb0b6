package gemini

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hanseo/rosetta-api/internal/config"
	"github.com/hanseo/rosetta-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey: "test-api-key",
		ModelName:    "gemini-2.0-flash",
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("explicit source language", func(t *testing.T) {
		prompt := buildPrompt("hello", domain.LanguageEnglish, domain.LanguageKorean)
		assert.Contains(t, prompt, "from English to Korean")
		assert.Contains(t, prompt, "hello")
		assert.Contains(t, prompt, "Output only the translated text")
	})

	t.Run("auto-detected source", func(t *testing.T) {
		prompt := buildPrompt("hello", domain.LanguageAuto, domain.LanguageJapanese)
		assert.Contains(t, prompt, "Translate the following text to Japanese.")
		assert.NotContains(t, prompt, "from")
	})

	t.Run("unregistered code falls back to raw code", func(t *testing.T) {
		prompt := buildPrompt("hello", domain.LanguageAuto, domain.LanguageCode("xx"))
		assert.Contains(t, prompt, "to xx")
	})
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	t.Run("nil response", func(t *testing.T) {
		_, err := extractText(nil)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := extractText(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("safety blocked", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{FinishReason: genai.FinishReasonSafety},
			},
		}
		_, err := extractText(resp)
		assert.ErrorIs(t, err, ErrContentBlocked)
	})

	t.Run("missing content", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}
		_, err := extractText(resp)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("joins and trims text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{
					Content: &genai.Content{
						Parts: []*genai.Part{
							{Text: "안녕"},
							{Text: "하세요\n"},
						},
					},
				},
			},
		}
		text, err := extractText(resp)
		require.NoError(t, err)
		assert.Equal(t, "안녕하세요", text)
	})

	t.Run("whitespace-only translation", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{
					Content: &genai.Content{
						Parts: []*genai.Part{{Text: "   \n"}},
					},
				},
			},
		}
		_, err := extractText(resp)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestNewTranslatorValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewTranslator(ctx, nil, validLLMConfig())
		assert.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := validLLMConfig()
		cfg.GeminiAPIKey = ""
		_, err := NewTranslator(ctx, testLogger(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		cfg := validLLMConfig()
		cfg.ModelName = ""
		_, err := NewTranslator(ctx, testLogger(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestReportHandlesNilCallback(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { report(nil, 50, "halfway") })

	var gotPercent int
	var gotMessage string
	report(func(percent int, message string) {
		gotPercent = percent
		gotMessage = message
	}, 90, "almost")
	assert.Equal(t, 90, gotPercent)
	assert.Equal(t, "almost", gotMessage)
}
