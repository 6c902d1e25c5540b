// Package webcache serves page bodies from a key-value store, fetching
// upstream on miss and caching the result with a short TTL. Per-URL
// access counters and the hit/miss totals live in the store too, so a
// restart loses nothing.
package webcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/reuben-idan/alx-backend-storage/internal/kv"
	"github.com/reuben-idan/alx-backend-storage/internal/model"
	"github.com/reuben-idan/alx-backend-storage/internal/repository"
)

// Store keys. Page content and access counters derive from the URL;
// the hit/miss totals are service-wide.
const (
	pagePrefix  = "cache:"
	countPrefix = "count:"
	hitsKey     = "webcache:hits"
	missesKey   = "webcache:misses"
)

// DefaultTTL is how long a fetched page stays cached.
const DefaultTTL = 10 * time.Second

// WebCacheError represents a web cache error.
type WebCacheError string

// Error implements the error interface.
func (e WebCacheError) Error() string {
	return string(e)
}

// ErrUpstream marks a failed upstream fetch, as opposed to a store
// failure. Matched with errors.Is.
const ErrUpstream WebCacheError = "upstream fetch failed"

// Stats are the service-wide cache totals.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// WebCache caches fetched pages in the store. Concurrent misses for
// the same URL share a single upstream fetch.
type WebCache struct {
	store    kv.Store
	fetcher  Fetcher
	ttl      time.Duration
	fetchLog repository.FetchLogRepository // optional

	group singleflight.Group
}

// Option configures a WebCache.
type Option func(*WebCache)

// WithTTL overrides how long fetched pages stay cached.
func WithTTL(ttl time.Duration) Option {
	return func(w *WebCache) { w.ttl = ttl }
}

// WithFetchLog journals every upstream fetch to repo. Journal failures
// are logged and never fail the page fetch.
func WithFetchLog(repo repository.FetchLogRepository) Option {
	return func(w *WebCache) { w.fetchLog = repo }
}

// New creates a web cache over the given store and fetcher.
func New(store kv.Store, fetcher Fetcher, opts ...Option) *WebCache {
	w := &WebCache{
		store:   store,
		fetcher: fetcher,
		ttl:     DefaultTTL,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// GetPage returns the body of url, from cache when fresh. Every call
// increments the URL's access counter, hit or miss. On miss the page
// is fetched upstream and cached for the TTL.
func (w *WebCache) GetPage(ctx context.Context, url string) (string, error) {
	if _, err := w.store.Incr(ctx, countPrefix+url); err != nil {
		return "", fmt.Errorf("failed to count access to %s: %w", url, err)
	}

	cached, err := w.store.Get(ctx, pagePrefix+url)
	if err == nil {
		if _, err := w.store.Incr(ctx, hitsKey); err != nil {
			return "", fmt.Errorf("failed to count cache hit: %w", err)
		}
		return string(cached), nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return "", fmt.Errorf("failed to read cached page for %s: %w", url, err)
	}

	if _, err := w.store.Incr(ctx, missesKey); err != nil {
		return "", fmt.Errorf("failed to count cache miss: %w", err)
	}

	// Concurrent callers share the flight, so it must not die with
	// whichever caller happened to start it. The fetcher's own timeout
	// still bounds the fetch.
	fetchCtx := context.WithoutCancel(ctx)
	body, err, _ := w.group.Do(url, func() (interface{}, error) {
		return w.fetchAndCache(fetchCtx, url)
	})
	if err != nil {
		return "", err
	}
	return body.(string), nil
}

// fetchAndCache performs the upstream fetch, caches the body with the
// TTL and journals the fetch.
func (w *WebCache) fetchAndCache(ctx context.Context, url string) (string, error) {
	start := time.Now()

	result, err := w.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := w.store.SetEx(ctx, pagePrefix+url, result.Body, w.ttl); err != nil {
		return "", fmt.Errorf("failed to cache page for %s: %w", url, err)
	}

	w.journal(ctx, url, result, time.Since(start))
	return string(result.Body), nil
}

// journal inserts the fetch record, best effort.
func (w *WebCache) journal(ctx context.Context, url string, result *FetchResult, took time.Duration) {
	if w.fetchLog == nil {
		return
	}

	rec := &model.FetchRecord{
		URL:        url,
		Status:     result.Status,
		Bytes:      int64(len(result.Body)),
		DurationMs: took.Milliseconds(),
		FetchedAt:  time.Now().UTC(),
	}
	if err := w.fetchLog.InsertFetch(ctx, rec); err != nil {
		log.Printf("[WebCache] Warning: failed to journal fetch of %s: %v", url, err)
	}
}

// AccessCount returns how many times GetPage has been called for url.
func (w *WebCache) AccessCount(ctx context.Context, url string) (int64, error) {
	return w.counter(ctx, countPrefix+url)
}

// Stats returns the service-wide hit and miss totals.
func (w *WebCache) Stats(ctx context.Context) (Stats, error) {
	hits, err := w.counter(ctx, hitsKey)
	if err != nil {
		return Stats{}, err
	}
	misses, err := w.counter(ctx, missesKey)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Hits: hits, Misses: misses}, nil
}

// counter reads an integer counter key, treating absent as zero.
func (w *WebCache) counter(ctx context.Context, key string) (int64, error) {
	data, err := w.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", key, err)
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse counter %s: %w", key, err)
	}
	return n, nil
}
