// Package detect resolves the source language of a translation request
// when the caller asked for automatic detection.
package detect

import (
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/hanseo/rosetta-api/internal/domain"
)

// minSignificantRunes is the minimum number of letters a text needs
// before detection is attempted; anything shorter is statistically
// meaningless.
const minSignificantRunes = 3

// Detector identifies the language of a text.
type Detector interface {
	// Detect returns the detected language code, or false when the text
	// is too short or no supported language matches.
	Detect(text string) (domain.LanguageCode, bool)
}

// linguaDetector detects languages with an n-gram model restricted to
// the languages the translator supports.
type linguaDetector struct {
	detector lingua.LanguageDetector
}

var _ Detector = (*linguaDetector)(nil)

// linguaLanguages maps supported language codes to their lingua models.
var linguaLanguages = map[lingua.Language]domain.LanguageCode{
	lingua.Korean:     domain.LanguageKorean,
	lingua.English:    domain.LanguageEnglish,
	lingua.Japanese:   domain.LanguageJapanese,
	lingua.Chinese:    domain.LanguageChinese,
	lingua.Spanish:    domain.LanguageSpanish,
	lingua.French:     domain.LanguageFrench,
	lingua.German:     domain.LanguageGerman,
	lingua.Russian:    domain.LanguageRussian,
	lingua.Portuguese: domain.LanguagePortuguese,
	lingua.Italian:    domain.LanguageItalian,
}

// New builds a detector restricted to the supported languages.
func New() Detector {
	languages := make([]lingua.Language, 0, len(linguaLanguages))
	for lang := range linguaLanguages {
		languages = append(languages, lang)
	}

	return &linguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect implements Detector.
func (d *linguaDetector) Detect(text string) (domain.LanguageCode, bool) {
	sample := strings.TrimSpace(text)
	if countLetters(sample) < minSignificantRunes {
		return "", false
	}

	language, exists := d.detector.DetectLanguageOf(sample)
	if !exists {
		return "", false
	}

	code, ok := linguaLanguages[language]
	return code, ok
}

// countLetters counts the letter runes in s, stopping once enough have
// been seen.
func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
			if n >= minSignificantRunes {
				return n
			}
		}
	}
	return n
}
