package language

import (
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

// DefaultLanguage is the fallback language code used whenever detection
// cannot produce a supported result. The allergen matcher's keyword families
// are English-only, so falling back to English keeps the pipeline moving.
const DefaultLanguage = "en"

// Detector identifies the source language of free-text tag strings coming
// from the food database. Tags are often locale-prefixed ("en:gluten"),
// which lets us skip the model entirely.
type Detector struct {
	detector  lingua.LanguageDetector
	supported map[string]bool
}

// NewDetector builds a detector over the languages the translation
// capability supports. Building lingua models is expensive; construct once
// and reuse.
func NewDetector() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Russian,
		lingua.Ukrainian,
		lingua.Polish,
		lingua.German,
		lingua.French,
		lingua.Spanish,
		lingua.Italian,
	}

	supported := make(map[string]bool, len(languages))
	for _, lang := range languages {
		supported[strings.ToLower(lang.IsoCode639_1().String())] = true
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithPreloadedLanguageModels().
		Build()

	return &Detector{detector: detector, supported: supported}
}

// Detect returns the best-guess two-letter language code for text.
//
// A two-letter locale prefix before a colon ("en:gluten") short-circuits
// detection when the prefix is a supported code. Otherwise the text is
// reduced to letters and spaces, lower-cased and handed to lingua. Any
// failure falls back to English rather than blocking the caller.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultLanguage
	}

	if prefix, ok := localePrefix(text); ok && d.IsSupported(prefix) {
		return prefix
	}

	cleaned := strings.ToLower(stripNonLetters(text))
	if strings.TrimSpace(cleaned) == "" {
		return DefaultLanguage
	}

	detected, ok := d.detector.DetectLanguageOf(cleaned)
	if !ok {
		return DefaultLanguage
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if !d.IsSupported(code) {
		return DefaultLanguage
	}

	return code
}

// IsSupported reports whether code is a language the translation capability
// can work with.
func (d *Detector) IsSupported(code string) bool {
	return d.supported[strings.ToLower(code)]
}

// localePrefix extracts a two-letter language marker from strings shaped
// like "xx:rest".
func localePrefix(text string) (string, bool) {
	before, _, found := strings.Cut(text, ":")
	if !found {
		return "", false
	}

	prefix := strings.ToLower(strings.TrimSpace(before))
	if len(prefix) != 2 {
		return "", false
	}
	for _, r := range prefix {
		if r < 'a' || r > 'z' {
			return "", false
		}
	}

	return prefix, true
}

func stripNonLetters(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
