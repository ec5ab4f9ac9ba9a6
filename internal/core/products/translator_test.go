package products

import (
	"context"
	"log/slog"
	"testing"

	"github.com/DietLens/scan-service/internal/core/language"
)

type stubTranslateClient struct {
	byText         map[string]string
	translateCalls int
	prepareCalls   int
}

func (s *stubTranslateClient) Translate(_ context.Context, text, source, target string) (string, error) {
	s.translateCalls++
	if out, ok := s.byText[text]; ok {
		return out, nil
	}
	return text, nil
}

func (s *stubTranslateClient) PrepareModel(_ context.Context, source, target string) error {
	s.prepareCalls++
	return nil
}

func strPtr(s string) *string { return &s }

func TestTranslateAttachesEnglishAllergenBucket(t *testing.T) {
	client := &stubTranslateClient{}
	translator := NewTranslator(language.NewDetector(), client, "en", slog.Default())

	product := &Product{
		Name:      strPtr("Шоколад"),
		Allergens: strPtr("en:gluten,en:milk"),
		Traces:    strPtr("en:milk,en:soybeans"),
	}

	got := translator.Translate(context.Background(), product)
	if got.Translations == nil || got.Translations.Allergens == nil {
		t.Fatal("expected translations attached")
	}

	want := "gluten, milk, soybeans"
	if *got.Translations.Allergens != want {
		t.Errorf("allergen bucket = %q, want %q", *got.Translations.Allergens, want)
	}
	if client.translateCalls != 0 {
		t.Errorf("english tags should not hit the translation service, got %d calls", client.translateCalls)
	}
}

func TestTranslateUnionIsCommutative(t *testing.T) {
	client := &stubTranslateClient{}
	translator := NewTranslator(language.NewDetector(), client, "en", slog.Default())

	a := &Product{Allergens: strPtr("en:gluten"), Traces: strPtr("en:milk")}
	b := &Product{Allergens: strPtr("en:milk"), Traces: strPtr("en:gluten")}

	bucketA := *translator.Translate(context.Background(), a).Translations.Allergens
	bucketB := *translator.Translate(context.Background(), b).Translations.Allergens

	// Order follows input, membership must match.
	if bucketA != "gluten, milk" || bucketB != "milk, gluten" {
		t.Errorf("unexpected buckets: %q vs %q", bucketA, bucketB)
	}
}

func TestTranslateForeignTags(t *testing.T) {
	client := &stubTranslateClient{byText: map[string]string{
		"ru:молоко": "milk",
	}}
	translator := NewTranslator(language.NewDetector(), client, "en", slog.Default())

	product := &Product{Allergens: strPtr("ru:молоко")}

	got := translator.Translate(context.Background(), product)
	if *got.Translations.Allergens != "milk" {
		t.Errorf("allergen bucket = %q, want %q", *got.Translations.Allergens, "milk")
	}
	if client.translateCalls != 1 {
		t.Errorf("expected 1 translation call, got %d", client.translateCalls)
	}
}

func TestTranslateNameNeverTranslated(t *testing.T) {
	client := &stubTranslateClient{}
	translator := NewTranslator(language.NewDetector(), client, "en", slog.Default())

	name := strPtr("Молочный шоколад")
	product := &Product{Name: name}

	got := translator.Translate(context.Background(), product)
	if got.Translations.ProductName != name {
		t.Error("product name must pass through untranslated")
	}
}

func TestTranslatePrefersEnglishIngredients(t *testing.T) {
	client := &stubTranslateClient{}
	translator := NewTranslator(language.NewDetector(), client, "en", slog.Default())

	product := &Product{
		IngredientsText: strPtr("ru:мука, сахар"),
		IngredientsEn:   strPtr("flour, sugar"),
	}

	got := translator.Translate(context.Background(), product)
	if got.Translations.Ingredients == nil || *got.Translations.Ingredients != "flour, sugar" {
		t.Errorf("ingredients = %v, want english source preferred", got.Translations.Ingredients)
	}
}

func TestTranslateNilProduct(t *testing.T) {
	client := &stubTranslateClient{}
	translator := NewTranslator(language.NewDetector(), client, "en", slog.Default())

	if got := translator.Translate(context.Background(), nil); got != nil {
		t.Errorf("Translate(nil) = %v, want nil", got)
	}
}
