package products

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// unreachableRedis degrades every cache operation, exercising the
// cache-as-accelerator path.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
}

func TestBrowseWithoutCacheStillServesPages(t *testing.T) {
	var requestedPages []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPages = append(requestedPages, r.URL.Query().Get("page"))
		fmt.Fprint(w, `{
			"count": 2,
			"page": 1,
			"page_count": 1,
			"products": [
				{"code": "1", "product_name": "Crackers"},
				{"code": "2", "product_name": "Chips"}
			]
		}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5, slog.Default())
	cache := NewCategoryCache(unreachableRedis(), slog.Default())
	browser := NewBrowser(client, cache, slog.Default())

	category := Category{Name: "Snacks", APITag: "en:snacks"}

	got, err := browser.Browse(context.Background(), category)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}

	// With no reachable cache the state is lost between calls, so the
	// browser starts over at page 1.
	if _, err := browser.Browse(context.Background(), category); err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if len(requestedPages) != 2 || requestedPages[0] != "1" || requestedPages[1] != "1" {
		t.Errorf("requested pages = %v, want two page-1 fetches", requestedPages)
	}
}

func TestBrowseFetchFailureServesCached(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 5, slog.Default())
	cache := NewCategoryCache(unreachableRedis(), slog.Default())
	browser := NewBrowser(client, cache, slog.Default())

	got, err := browser.Browse(context.Background(), Category{Name: "Snacks", APITag: "en:snacks"})
	if err != nil {
		t.Fatalf("Browse must degrade, got error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty cached list, got %v", got)
	}
}

func TestResetRestartsPagination(t *testing.T) {
	var requestedPages []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPages = append(requestedPages, r.URL.Query().Get("page"))
		fmt.Fprint(w, `{
			"count": 1,
			"page": 1,
			"page_count": 1,
			"products": [{"code": "1", "product_name": "Crackers"}]
		}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5, slog.Default())
	cache := NewCategoryCache(unreachableRedis(), slog.Default())
	browser := NewBrowser(client, cache, slog.Default())

	category := Category{Name: "Snacks", APITag: "en:snacks"}

	if _, err := browser.Browse(context.Background(), category); err != nil {
		t.Fatalf("Browse failed: %v", err)
	}

	// Reset takes the same category lock Browse does; a follow-up Browse
	// must start over at page 1.
	browser.Reset(context.Background(), category)

	if _, err := browser.Browse(context.Background(), category); err != nil {
		t.Fatalf("Browse after Reset failed: %v", err)
	}
	if len(requestedPages) != 2 || requestedPages[1] != "1" {
		t.Errorf("requested pages = %v, want a fresh page-1 fetch after reset", requestedPages)
	}
}

func TestCategoryCacheLockSerializes(t *testing.T) {
	cache := NewCategoryCache(unreachableRedis(), slog.Default())
	category := Category{Name: "Snacks", APITag: "en:snacks"}

	unlock := cache.Lock(category)

	acquired := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		u := cache.Lock(category)
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second caller acquired the category lock while held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	wg.Wait()

	select {
	case <-acquired:
	default:
		t.Fatal("second caller never acquired the lock after release")
	}
}
