package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanseo/rosetta-api/internal/domain"
)

func TestDetectorIdentifiesSupportedLanguages(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want domain.LanguageCode
	}{
		{name: "korean", text: "안녕하세요, 오늘 날씨가 참 좋네요.", want: domain.LanguageKorean},
		{name: "english", text: "The quick brown fox jumps over the lazy dog.", want: domain.LanguageEnglish},
		{name: "japanese", text: "こんにちは、今日はいい天気ですね。", want: domain.LanguageJapanese},
		{name: "russian", text: "Сегодня очень хорошая погода.", want: domain.LanguageRussian},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := d.Detect(tc.text)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectorRejectsShortText(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   \n\t "},
		{name: "two letters", text: "ab"},
		{name: "digits and punctuation", text: "1234 ?! 42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := d.Detect(tc.text)
			assert.False(t, ok)
		})
	}
}

func TestDetectorTrimsBeforeCounting(t *testing.T) {
	d := New()

	got, ok := d.Detect("   bonjour tout le monde   ")
	require.True(t, ok)
	assert.Equal(t, domain.LanguageFrench, got)
}
