package domain

// LanguageCode is an ISO 639-1 language code for a supported language,
// plus the special "auto" value for source-language auto-detection.
type LanguageCode string

// Supported language codes
const (
	LanguageAuto       LanguageCode = "auto"
	LanguageKorean     LanguageCode = "ko"
	LanguageEnglish    LanguageCode = "en"
	LanguageJapanese   LanguageCode = "ja"
	LanguageChinese    LanguageCode = "zh"
	LanguageSpanish    LanguageCode = "es"
	LanguageFrench     LanguageCode = "fr"
	LanguageGerman     LanguageCode = "de"
	LanguageRussian    LanguageCode = "ru"
	LanguagePortuguese LanguageCode = "pt"
	LanguageItalian    LanguageCode = "it"
)

// Language describes one entry of the language registry with its ISO code
// and display information.
type Language struct {
	Code        LanguageCode `json:"code"`
	Name        string       `json:"name"`         // English name
	DisplayName string       `json:"display_name"` // Native name
}

// languageRegistry holds every supported language in a stable order
// (auto first, then the ten translatable languages).
var languageRegistry = []Language{
	{Code: LanguageAuto, Name: "Auto Detect", DisplayName: "자동 감지"},
	{Code: LanguageKorean, Name: "Korean", DisplayName: "한국어"},
	{Code: LanguageEnglish, Name: "English", DisplayName: "English"},
	{Code: LanguageJapanese, Name: "Japanese", DisplayName: "日本語"},
	{Code: LanguageChinese, Name: "Chinese", DisplayName: "中文"},
	{Code: LanguageSpanish, Name: "Spanish", DisplayName: "Español"},
	{Code: LanguageFrench, Name: "French", DisplayName: "Français"},
	{Code: LanguageGerman, Name: "German", DisplayName: "Deutsch"},
	{Code: LanguageRussian, Name: "Russian", DisplayName: "Русский"},
	{Code: LanguagePortuguese, Name: "Portuguese", DisplayName: "Português"},
	{Code: LanguageItalian, Name: "Italian", DisplayName: "Italiano"},
}

// GetLanguage returns the registry entry for the given code.
// The second return value is false if the code is not supported.
func GetLanguage(code LanguageCode) (Language, bool) {
	for _, lang := range languageRegistry {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}

// IsSupportedLanguage reports whether the given code is in the registry.
func IsSupportedLanguage(code LanguageCode) bool {
	_, ok := GetLanguage(code)
	return ok
}

// SupportedLanguages returns all registry entries in display order.
// If excludeAuto is true, the auto-detection entry is omitted.
func SupportedLanguages(excludeAuto bool) []Language {
	languages := make([]Language, 0, len(languageRegistry))
	for _, lang := range languageRegistry {
		if excludeAuto && lang.Code == LanguageAuto {
			continue
		}
		languages = append(languages, lang)
	}
	return languages
}
