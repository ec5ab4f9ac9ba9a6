package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("products-client")

// ErrProductNotFound is returned when a barcode yields no product. Any
// transport or upstream failure during the fetch collapses into this error:
// callers never see a partial product.
var ErrProductNotFound = errors.New("product not found")

// Client fetches product records from an OpenFoodFacts-compatible API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, pageSize int, logger *slog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Client{
		baseURL:  baseURL,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With("service", "products"),
	}
}

// GetProductByBarcode fetches one product. An upstream status other than 1
// means the barcode is unknown.
func (c *Client) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	ctx, span := tracer.Start(ctx, "products.GetProductByBarcode")
	defer span.End()

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))

	var resp productResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		c.logger.Error("Product fetch failed", "barcode", barcode, "error", err)
		return nil, ErrProductNotFound
	}

	if resp.Status != 1 || resp.Product == nil {
		c.logger.Debug("Barcode unknown to food database", "barcode", barcode, "status", resp.Status)
		return nil, ErrProductNotFound
	}

	return resp.Product, nil
}

// GetProductsByCategory fetches one page of a category listing. Failures
// degrade to an empty page.
func (c *Client) GetProductsByCategory(ctx context.Context, category Category, page int) ([]*Product, error) {
	ctx, span := tracer.Start(ctx, "products.GetProductsByCategory")
	defer span.End()

	var endpoint string
	if category.APITag == CategoryAll.APITag {
		endpoint = fmt.Sprintf("%s/cgi/search.pl?json=1&action=process&page=%d&page_size=%d",
			c.baseURL, page, c.pageSize)
	} else {
		endpoint = fmt.Sprintf("%s/category/%s.json?page=%d&page_size=%d",
			c.baseURL, url.PathEscape(category.APITag), page, c.pageSize)
	}

	var resp categoryResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		c.logger.Error("Category page fetch failed",
			"category", category.APITag,
			"page", page,
			"error", err)
		return nil, err
	}

	products := make([]*Product, 0, len(resp.Products))
	for _, product := range resp.Products {
		if product.Name == nil || *product.Name == "" {
			continue
		}
		products = append(products, product)
	}

	c.logger.Debug("Fetched category page",
		"category", category.APITag,
		"page", page,
		"count", len(products))

	return products, nil
}

// SearchProducts runs one page of a free-text search over the full catalog.
// Like category pages, failures degrade to an error the caller can treat as
// an empty page.
func (c *Client) SearchProducts(ctx context.Context, terms string, page int) ([]*Product, error) {
	ctx, span := tracer.Start(ctx, "products.SearchProducts")
	defer span.End()

	endpoint := fmt.Sprintf("%s/cgi/search.pl?json=1&action=process&search_terms=%s&page=%d&page_size=%d",
		c.baseURL, url.QueryEscape(terms), page, c.pageSize)

	var resp categoryResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		c.logger.Error("Product search failed", "terms", terms, "page", page, "error", err)
		return nil, err
	}

	products := make([]*Product, 0, len(resp.Products))
	for _, product := range resp.Products {
		if product.Name == nil || *product.Name == "" {
			continue
		}
		products = append(products, product)
	}

	return products, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("food API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
