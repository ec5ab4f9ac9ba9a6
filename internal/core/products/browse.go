package products

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"

	"github.com/DietLens/scan-service/pkg/telemetry"
)

// Browser serves the paginated category listing, backed by the shared
// category cache. The pipeline that owns pagination for a category holds the
// category lock for the duration of a page load.
type Browser struct {
	client *Client
	cache  *CategoryCache
	logger *slog.Logger
}

func NewBrowser(client *Client, cache *CategoryCache, logger *slog.Logger) *Browser {
	return &Browser{
		client: client,
		cache:  cache,
		logger: logger.With("service", "browser"),
	}
}

// Browse returns the accumulated product list for a category, fetching the
// next page unless the listing is already exhausted. Fetch failures return
// whatever the cache already holds.
func (b *Browser) Browse(ctx context.Context, category Category) ([]*Product, error) {
	unlock := b.cache.Lock(category)
	defer unlock()

	state, _ := b.cache.GetState(ctx, category)
	if state.EndReached {
		return state.Products, nil
	}
	if state.NextPage == 0 {
		state.NextPage = 1
	}

	page, err := b.client.GetProductsByCategory(ctx, category, state.NextPage)
	if err != nil {
		b.logger.Warn("Page load failed, serving cached products",
			"category", category.APITag,
			"page", state.NextPage,
			"error", err)
		return state.Products, nil
	}

	state.Products = append(state.Products, page...)
	state.NextPage++
	state.EndReached = len(page) == 0
	b.cache.PutState(ctx, category, state)

	if telemetry.CategoryPageLoads != nil {
		telemetry.CategoryPageLoads.Add(ctx, 1, api.WithAttributes(
			attribute.String("category", category.APITag),
		))
	}

	return state.Products, nil
}

// Reset clears the cached pagination state for a category.
func (b *Browser) Reset(ctx context.Context, category Category) {
	unlock := b.cache.Lock(category)
	defer unlock()
	b.cache.Clear(ctx, category)
}
