package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetProductByBarcode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/product/4000417025005.json":
			fmt.Fprint(w, `{
				"status": 1,
				"product": {
					"code": "4000417025005",
					"product_name": "Milk Chocolate",
					"allergens": "en:milk,en:soybeans",
					"traces": "en:nuts"
				}
			}`)
		case "/api/v2/product/0000000000000.json":
			fmt.Fprint(w, `{"status": 0}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5, slog.Default())

	product, err := client.GetProductByBarcode(context.Background(), "4000417025005")
	if err != nil {
		t.Fatalf("GetProductByBarcode failed: %v", err)
	}
	if product.Name == nil || *product.Name != "Milk Chocolate" {
		t.Errorf("unexpected product name: %v", product.Name)
	}
	if product.Allergens == nil || *product.Allergens != "en:milk,en:soybeans" {
		t.Errorf("unexpected allergens: %v", product.Allergens)
	}

	if _, err := client.GetProductByBarcode(context.Background(), "0000000000000"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("status 0 error = %v, want ErrProductNotFound", err)
	}

	if _, err := client.GetProductByBarcode(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("http 404 error = %v, want ErrProductNotFound", err)
	}
}

func TestGetProductByBarcodeUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 5, slog.Default())

	if _, err := client.GetProductByBarcode(context.Background(), "123"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("transport error = %v, want ErrProductNotFound", err)
	}
}

func TestGetProductsByCategoryFiltersBlankNames(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/category/en:snacks.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{
			"count": 3,
			"page": 1,
			"page_count": 3,
			"products": [
				{"code": "1", "product_name": "Crackers"},
				{"code": "2", "product_name": ""},
				{"code": "3"}
			]
		}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5, slog.Default())

	page, err := client.GetProductsByCategory(context.Background(), Category{Name: "Snacks", APITag: "en:snacks"}, 1)
	if err != nil {
		t.Fatalf("GetProductsByCategory failed: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 usable product, got %d", len(page))
	}
	if *page[0].Name != "Crackers" {
		t.Errorf("unexpected product: %v", *page[0].Name)
	}
}

func TestSearchProducts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cgi/search.pl" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("search_terms") != "chocolate" {
			t.Errorf("unexpected search terms: %s", r.URL.Query().Get("search_terms"))
		}
		fmt.Fprint(w, `{
			"count": 1,
			"page": 1,
			"page_count": 1,
			"products": [{"code": "1", "product_name": "Dark Chocolate"}]
		}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5, slog.Default())

	results, err := client.SearchProducts(context.Background(), "chocolate", 1)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(results) != 1 || *results[0].Name != "Dark Chocolate" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestGetProductsByCategoryAllUsesSearch(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"count": 0, "page": 1, "page_count": 0, "products": []}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5, slog.Default())

	if _, err := client.GetProductsByCategory(context.Background(), CategoryAll, 2); err != nil {
		t.Fatalf("GetProductsByCategory failed: %v", err)
	}
	if gotPath != "/cgi/search.pl" {
		t.Errorf("full-catalog browse hit %q, want /cgi/search.pl", gotPath)
	}
}
