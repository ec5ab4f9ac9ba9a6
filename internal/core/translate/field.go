package translate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/DietLens/scan-service/internal/core/language"
	"github.com/DietLens/scan-service/pkg/telemetry"
)

var langPrefixRe = regexp.MustCompile(`(?i)^[a-z]{2}:`)

// FieldTranslator translates single text fields best-effort: a failed
// translation returns the original (prefix-stripped) text instead of an
// error, so a degraded translation never fails the caller.
type FieldTranslator struct {
	detector *language.Detector
	cache    *PairCache
	logger   *slog.Logger
}

// NewFieldTranslator wires a detector and a run-scoped pair cache. The
// caller owns the cache lifecycle and must CloseAll it when the run ends.
func NewFieldTranslator(detector *language.Detector, cache *PairCache, logger *slog.Logger) *FieldTranslator {
	return &FieldTranslator{
		detector: detector,
		cache:    cache,
		logger:   logger.With("service", "field-translator"),
	}
}

// TranslateField translates text into target. Blank input comes back
// unchanged. When the detected source already matches the target the text is
// only cleaned (locale prefix stripped, trimmed), not translated.
func (t *FieldTranslator) TranslateField(ctx context.Context, text, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	source := t.detector.Detect(text)
	cleaned := stripLocalePrefix(text)

	if source == target {
		return cleaned
	}

	instance := t.cache.Get(source, target)
	translated, err := instance.Translate(ctx, text)
	if err != nil {
		t.logger.Warn("Translation failed, keeping original text",
			"source", source,
			"target", target,
			"error", err)
		if telemetry.TranslationFallbacks != nil {
			telemetry.TranslationFallbacks.Add(ctx, 1)
		}
		return cleaned
	}

	return stripLocalePrefix(translated)
}

func stripLocalePrefix(text string) string {
	return strings.TrimSpace(langPrefixRe.ReplaceAllString(strings.TrimSpace(text), ""))
}
