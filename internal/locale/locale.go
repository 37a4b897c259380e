// ABOUTME: Supported interface languages and their lookup by code or Accept-Language
// ABOUTME: Matching uses golang.org/x/text/language; unknown codes fall back to a default

package locale

import (
	"golang.org/x/text/language"
)

// FallbackLocale is the locale used when nothing else matches.
const FallbackLocale = "en-gb"

// Language is one supported interface language.
type Language struct {
	ShortName      string `json:"short_name"`
	OriginalName   string `json:"original_name"`
	TranslatedName string `json:"translated_name"`
	// Country is the ISO-3166 alpha-2 code, or a pseudo code for live translation.
	Country string `json:"country,omitempty"`
	Locale  string `json:"locale"`
}

// liveTranslation is the pseudo language served by the translation platform.
// It is listed but never picked by Accept-Language matching.
const liveTranslation = "cr"

var languages = []Language{
	{ShortName: "de", OriginalName: "Deutsch", TranslatedName: "German", Country: "DE", Locale: "de"},
	{ShortName: "en", OriginalName: "English", TranslatedName: "English", Country: "GB", Locale: "en-gb"},
	{ShortName: "da", OriginalName: "Dansk", TranslatedName: "Danish", Country: "DK", Locale: "da"},
	{ShortName: "he", OriginalName: "עברית", TranslatedName: "Hebrew", Country: "IL", Locale: "he"},
	{ShortName: "es", OriginalName: "Español", TranslatedName: "Spanish", Country: "ES", Locale: "es"},
	{ShortName: "fr", OriginalName: "Français", TranslatedName: "French", Country: "FR", Locale: "fr"},
	{ShortName: "it", OriginalName: "Italiano", TranslatedName: "Italian", Country: "IT", Locale: "it"},
	{ShortName: "ja", OriginalName: "日本語", TranslatedName: "Japanese", Country: "JP", Locale: "ja"},
	{ShortName: "ko", OriginalName: "한국어", TranslatedName: "Korean", Country: "KR", Locale: "ko"},
	{ShortName: "no", OriginalName: "Norsk", TranslatedName: "Norwegian", Country: "NO", Locale: "nb"},
	{ShortName: "sk", OriginalName: "Slovenčina", TranslatedName: "Slovak", Country: "SK", Locale: "sk"},
	{ShortName: "nl", OriginalName: "Nederlands", TranslatedName: "Dutch", Country: "NL", Locale: "nl"},
	{ShortName: "pl", OriginalName: "Polski", TranslatedName: "Polish", Country: "PL", Locale: "pl"},
	{ShortName: "pt", OriginalName: "Português", TranslatedName: "Portuguese", Country: "PT", Locale: "pt"},
	{ShortName: "ru", OriginalName: "Русский", TranslatedName: "Russian", Country: "RU", Locale: "ru"},
	{ShortName: "sl", OriginalName: "Slovenščina", TranslatedName: "Slovenian", Country: "SI", Locale: "sl"},
	{ShortName: "sv", OriginalName: "Svenska", TranslatedName: "Swedish", Country: "SE", Locale: "sv"},
	{ShortName: "uk", OriginalName: "Українська", TranslatedName: "Ukrainian", Country: "UA", Locale: "uk"},
	{ShortName: "vi", OriginalName: "Tiếng Việt", TranslatedName: "Vietnamese", Country: "VN", Locale: "vi"},
	{ShortName: "cn", OriginalName: "中文", TranslatedName: "Chinese (Simplified)", Country: "CN", Locale: "zh-cn"},
	{ShortName: "tw", OriginalName: "中文(台灣)", TranslatedName: "Chinese (Traditional)", Country: "TW", Locale: "zh-tw"},
	{ShortName: "gr", OriginalName: "Ελληνικά", TranslatedName: "Greek", Country: "GR", Locale: "el"},
	{ShortName: "tr", OriginalName: "Türkçe", TranslatedName: "Turkish", Country: "TR", Locale: "tr"},
	{ShortName: "lv", OriginalName: "Latvian", TranslatedName: "Latvian", Country: "LV", Locale: "lv"},
	{ShortName: "hr", OriginalName: "Hrvatski", TranslatedName: "Croatian", Country: "HR", Locale: "hr"},
	{ShortName: "hu", OriginalName: "Magyar", TranslatedName: "Hungarian", Country: "HU", Locale: "hu"},
	{ShortName: "cs", OriginalName: "Čeština", TranslatedName: "Czech", Country: "CZ", Locale: "cs"},
	{ShortName: liveTranslation, OriginalName: "Crowdin", TranslatedName: "(Live translation)", Country: "CROWDIN", Locale: "cr"},
}

// All returns every supported language in display order.
func All() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// find returns the language whose short name or locale equals code.
func find(code string) (Language, bool) {
	for _, l := range languages {
		if l.ShortName == code {
			return l, true
		}
	}
	for _, l := range languages {
		if l.Locale == code {
			return l, true
		}
	}
	return Language{}, false
}

// ByCode returns the language with the given short name or locale, or the
// English (GB) language when there is none.
func ByCode(code string) Language {
	if l, ok := find(code); ok {
		return l
	}
	l, _ := find(FallbackLocale)
	return l
}

// Resolver picks languages for requests, falling back to a configured default.
type Resolver struct {
	fallback   Language
	candidates []Language
	matcher    language.Matcher
}

// NewResolver creates a resolver whose default is the language named by
// defaultCode, or English (GB) when the code is unknown or empty.
func NewResolver(defaultCode string) *Resolver {
	fallback := ByCode(defaultCode)

	// The matcher treats the first tag as its default.
	candidates := []Language{fallback}
	tags := []language.Tag{language.Make(fallback.Locale)}
	for _, l := range languages {
		if l.ShortName == fallback.ShortName || l.ShortName == liveTranslation {
			continue
		}
		candidates = append(candidates, l)
		tags = append(tags, language.Make(l.Locale))
	}

	return &Resolver{
		fallback:   fallback,
		candidates: candidates,
		matcher:    language.NewMatcher(tags),
	}
}

// Default returns the fallback language.
func (r *Resolver) Default() Language {
	return r.fallback
}

// Resolve returns the language with the given short name or locale, or the
// default.
func (r *Resolver) Resolve(code string) Language {
	if l, ok := find(code); ok {
		return l
	}
	return r.fallback
}

// Match picks the best supported language for an Accept-Language header.
func (r *Resolver) Match(acceptLanguage string) Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.fallback
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(r.candidates) {
		return r.fallback
	}
	return r.candidates[index]
}
