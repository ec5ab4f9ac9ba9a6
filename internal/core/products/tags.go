package products

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	leadingLangRe = regexp.MustCompile(`(?i)^[a-z]{2}:`)
	langMarkerRe  = regexp.MustCompile(`(?i)[a-z]{2}:|-`)
)

// StripLangPrefix removes a leading two-letter locale marker ("en:", "ru:")
// from a tag string and trims surrounding whitespace. The marker is
// recognized after surrounding whitespace, so the trim happens first.
func StripLangPrefix(tag string) string {
	return strings.TrimSpace(leadingLangRe.ReplaceAllString(strings.TrimSpace(tag), ""))
}

// SplitTags splits a comma-joined tag list into trimmed, non-blank tokens.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// DisplayTags renders raw allergen/trace strings for UI tag chips: locale
// markers and hyphens become spaces, brackets are trimmed, each segment is
// title-cased, and duplicates across both sources collapse. This display
// path is independent of the English-lowercased path used for matching; the
// two must never be conflated.
func DisplayTags(allergens, traces string) []string {
	var combined []string
	seen := make(map[string]bool)

	for _, raw := range []string{allergens, traces} {
		for _, tag := range splitAndClean(raw) {
			if !seen[tag] {
				combined = append(combined, tag)
				seen[tag] = true
			}
		}
	}

	return combined
}

func splitAndClean(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	cleaned := langMarkerRe.ReplaceAllString(raw, " ")
	cleaned = strings.Trim(cleaned, "[]")

	parts := strings.Split(cleaned, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = titleCase(strings.TrimSpace(part))
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToTitle(runes[0])
	return string(runes)
}
