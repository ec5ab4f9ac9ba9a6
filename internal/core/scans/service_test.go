package scans

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/DietLens/scan-service/internal/core/allergens"
	"github.com/DietLens/scan-service/internal/core/products"
)

type fakeProductSource struct {
	product *products.Product
	err     error
	calls   int
}

func (f *fakeProductSource) GetProductByBarcode(_ context.Context, barcode string) (*products.Product, error) {
	f.calls++
	return f.product, f.err
}

type fakePrefSource struct {
	prefs allergens.Preferences
	err   error
	calls int
}

func (f *fakePrefSource) GetAllergyPreferences(_ context.Context, _ uuid.UUID) (allergens.Preferences, error) {
	f.calls++
	return f.prefs, f.err
}

// bucketTranslator attaches a fixed English allergen bucket, standing in
// for the full translation orchestrator.
type bucketTranslator struct {
	bucket string
	calls  int
}

func (b *bucketTranslator) Translate(_ context.Context, product *products.Product) *products.Product {
	b.calls++
	if product == nil {
		return nil
	}
	product.Translations = &products.Translations{Allergens: &b.bucket}
	return product
}

func testProduct(barcode string) *products.Product {
	return &products.Product{Barcode: &barcode}
}

func TestScanBlankBarcode(t *testing.T) {
	svc := NewService(nil, &fakeProductSource{}, &fakePrefSource{}, &bucketTranslator{}, slog.Default())

	for _, barcode := range []string{"", "   "} {
		if _, err := svc.Scan(context.Background(), uuid.Nil, barcode); !errors.Is(err, ErrBlankBarcode) {
			t.Errorf("Scan(%q) error = %v, want ErrBlankBarcode", barcode, err)
		}
	}
}

func TestScanProductNotFoundSurfaced(t *testing.T) {
	source := &fakeProductSource{err: products.ErrProductNotFound}
	translator := &bucketTranslator{}
	svc := NewService(nil, source, &fakePrefSource{}, translator, slog.Default())

	_, err := svc.Scan(context.Background(), uuid.Nil, "4000417025005")
	if !errors.Is(err, products.ErrProductNotFound) {
		t.Fatalf("Scan() error = %v, want ErrProductNotFound", err)
	}
	if translator.calls != 0 {
		t.Errorf("translation must not run for a missing product, got %d calls", translator.calls)
	}
}

func TestScanPreferenceFailureDegrades(t *testing.T) {
	source := &fakeProductSource{product: testProduct("4000417025005")}
	prefs := &fakePrefSource{err: errors.New("connection refused")}
	translator := &bucketTranslator{bucket: "gluten, milk"}
	svc := NewService(nil, source, prefs, translator, slog.Default())

	result, err := svc.Scan(context.Background(), uuid.New(), "4000417025005")
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(result.Detected) != 0 {
		t.Errorf("zero preferences must detect nothing, got %v", result.Detected)
	}
}

func TestScanDetectsAllergens(t *testing.T) {
	source := &fakeProductSource{product: testProduct("4000417025005")}
	prefSource := &fakePrefSource{prefs: allergens.Preferences{Gluten: true, Lactose: true}}
	translator := &bucketTranslator{bucket: "gluten, milk, soybeans"}
	svc := NewService(nil, source, prefSource, translator, slog.Default())

	result, err := svc.Scan(context.Background(), uuid.New(), "4000417025005")
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	want := []allergens.Key{allergens.Gluten, allergens.Lactose}
	if !reflect.DeepEqual(result.Detected, want) {
		t.Errorf("Detected = %v, want %v", result.Detected, want)
	}
	if result.Product == nil || result.Product.Translations == nil {
		t.Error("result must carry the translated product")
	}
	if source.calls != 1 || prefSource.calls != 1 {
		t.Errorf("expected one fetch each, got product=%d prefs=%d", source.calls, prefSource.calls)
	}
}

func TestScanAnonymousUser(t *testing.T) {
	source := &fakeProductSource{product: testProduct("59032823")}
	translator := &bucketTranslator{bucket: "soybeans"}
	svc := NewService(nil, source, &fakePrefSource{}, translator, slog.Default())

	// uuid.Nil skips both stored preferences use and history persistence;
	// the scan itself still succeeds.
	result, err := svc.Scan(context.Background(), uuid.Nil, "59032823")
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(result.Detected) != 0 {
		t.Errorf("anonymous scan with zero preferences detected %v", result.Detected)
	}
}
