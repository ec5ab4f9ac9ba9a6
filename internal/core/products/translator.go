package products

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DietLens/scan-service/internal/core/language"
	"github.com/DietLens/scan-service/internal/core/translate"
)

// englishLanguage is the fixed logic-side target: the allergen matcher's
// keyword families only understand English tokens.
const englishLanguage = "en"

// Translator is the product translation orchestrator. One Translate call
// localizes the ingredients for display, consolidates allergens and traces
// into a single English bucket for matching, and attaches the result to the
// product. Translator instances created during a run are pooled per language
// pair and released before returning, on every exit path.
type Translator struct {
	detector *language.Detector
	client   translate.Client
	locale   string
	logger   *slog.Logger
}

// NewTranslator builds the orchestrator. locale is the UI-facing target
// language for ingredient text.
func NewTranslator(detector *language.Detector, client translate.Client, locale string, logger *slog.Logger) *Translator {
	if locale == "" {
		locale = englishLanguage
	}
	return &Translator{
		detector: detector,
		client:   client,
		locale:   locale,
		logger:   logger.With("service", "product-translator"),
	}
}

// Translate attaches Translations to the product and returns it. Every
// field is translated best-effort: a failed field keeps its original text,
// and the product always comes back usable.
func (t *Translator) Translate(ctx context.Context, product *Product) *Product {
	if product == nil {
		return nil
	}

	cache := translate.NewPairCache(t.client)
	defer cache.CloseAll()

	fields := translate.NewFieldTranslator(t.detector, cache, t.logger)

	// Ingredients go to the user's locale for display, preferring the
	// English-sourced variant when the API provides one.
	ingredientsSource := product.IngredientsEn
	if ingredientsSource == nil || strings.TrimSpace(*ingredientsSource) == "" {
		ingredientsSource = product.IngredientsText
	}

	var ingredients *string
	if ingredientsSource != nil {
		translated := fields.TranslateField(ctx, *ingredientsSource, t.locale)
		ingredients = &translated
	}

	// Allergens and traces carry the same consumer risk here, so the
	// candidate set is the union of both tag lists.
	candidates := allergenCandidates(product.Allergens, product.Traces)

	translatedTags := make([]string, 0, len(candidates))
	for _, tag := range candidates {
		translatedTags = append(translatedTags, fields.TranslateField(ctx, tag, englishLanguage))
	}

	joined := strings.Join(translatedTags, ", ")
	product.Translations = &Translations{
		ProductName: product.Name, // name is shown as-is, never translated
		Ingredients: ingredients,
		Allergens:   &joined,
	}

	t.logger.Debug("Attached product translations",
		"candidate_tags", len(candidates),
		"locale", t.locale)

	return product
}

// allergenCandidates unions the allergens and traces tag lists with set
// semantics: a tag present in both appears once, a traces-only tag counts
// exactly like a declared allergen.
func allergenCandidates(allergens, traces *string) []string {
	var candidates []string
	seen := make(map[string]bool)

	for _, raw := range []*string{allergens, traces} {
		if raw == nil {
			continue
		}
		for _, tag := range SplitTags(*raw) {
			if !seen[tag] {
				candidates = append(candidates, tag)
				seen[tag] = true
			}
		}
	}

	return candidates
}
