package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// CategoryState is the paged browse state cached per category.
type CategoryState struct {
	Products   []*Product `json:"products"`
	NextPage   int        `json:"next_page"`
	EndReached bool       `json:"end_reached"`
}

const categoryStateTTL = 15 * time.Minute

// CategoryCache stores per-category pagination state in Redis. Concurrent
// loads for the same category are serialized through a per-key mutex, so two
// callers paging the same category cannot interleave writes.
type CategoryCache struct {
	rdb    *redis.Client
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCategoryCache(rdb *redis.Client, logger *slog.Logger) *CategoryCache {
	return &CategoryCache{
		rdb:    rdb,
		logger: logger.With("service", "category-cache"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Lock acquires the serialization lock for a category; the returned func
// releases it.
func (c *CategoryCache) Lock(category Category) func() {
	c.mu.Lock()
	lock, ok := c.locks[category.APITag]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[category.APITag] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// GetState returns the cached state for a category. A cache miss yields the
// zero state starting at page 1.
func (c *CategoryCache) GetState(ctx context.Context, category Category) (CategoryState, bool) {
	data, err := c.rdb.Get(ctx, c.key(category)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Category cache read failed", "category", category.APITag, "error", err)
		}
		return CategoryState{NextPage: 1}, false
	}

	var state CategoryState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.Warn("Category cache entry corrupt, discarding", "category", category.APITag, "error", err)
		return CategoryState{NextPage: 1}, false
	}

	return state, true
}

// PutState stores the state for a category. Write failures are logged and
// swallowed; the cache is an accelerator, not a source of truth.
func (c *CategoryCache) PutState(ctx context.Context, category Category, state CategoryState) {
	data, err := json.Marshal(state)
	if err != nil {
		c.logger.Warn("Category cache encode failed", "category", category.APITag, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, c.key(category), data, categoryStateTTL).Err(); err != nil {
		c.logger.Warn("Category cache write failed", "category", category.APITag, "error", err)
	}
}

// Clear drops the cached state for a category.
func (c *CategoryCache) Clear(ctx context.Context, category Category) {
	if err := c.rdb.Del(ctx, c.key(category)).Err(); err != nil {
		c.logger.Warn("Category cache delete failed", "category", category.APITag, "error", err)
	}
}

func (c *CategoryCache) key(category Category) string {
	return fmt.Sprintf("products:category:%s", category.APITag)
}
