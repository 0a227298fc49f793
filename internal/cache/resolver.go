package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"aigency/internal/core"
	"aigency/internal/scrape"
)

// KeyPrefix namespaces article text in shared stores.
const KeyPrefix = "article:"

// Key returns the cache key for an article URL.
func Key(url string) string { return KeyPrefix + url }

// Resolver turns an article URL into source text, scraping only on a cache miss.
type Resolver struct {
	store   Store
	scraper scrape.Scraper
	ttl     time.Duration
	group   singleflight.Group
	log     *slog.Logger
}

// NewResolver creates a Resolver. A non-positive ttl uses DefaultTTL.
func NewResolver(store Store, scraper scrape.Scraper, ttl time.Duration, log *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, scraper: scraper, ttl: ttl, log: log}
}

// Resolve returns the source text for url. The default URL resolves to the built-in demo
// article without touching the cache or the network. Scrape failures are returned as
// *core.FetchError and are not retried.
func (r *Resolver) Resolve(ctx context.Context, url, defaultURL string) (core.SourceText, error) {
	if url == defaultURL {
		return core.DefaultArticle, nil
	}

	key := Key(url)
	text, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.WarnContext(ctx, "cache read failed", "url", url, "error", err.Error())
	} else if found {
		r.log.DebugContext(ctx, "cache hit", "url", url)
		return core.SourceText(text), nil
	}

	r.log.DebugContext(ctx, "cache miss", "url", url)
	// The shared scrape must outlive any single caller that gives up.
	scrapeCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		start := time.Now()
		scraped, err := r.scraper.Scrape(scrapeCtx, url)
		if err != nil {
			return "", err
		}
		r.log.InfoContext(scrapeCtx, "scraped article", "url", url, "chars", len([]rune(scraped)), "duration", time.Since(start))
		if err := r.store.Set(scrapeCtx, key, scraped, r.ttl); err != nil {
			r.log.WarnContext(scrapeCtx, "cache write failed", "url", url, "error", err.Error())
		}
		return scraped, nil
	})

	select {
	case <-ctx.Done():
		return "", &core.FetchError{URL: url, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			r.log.ErrorContext(ctx, "scrape failed", "url", url, "error", res.Err.Error())
			return "", &core.FetchError{URL: url, Err: res.Err}
		}
		if res.Shared {
			r.log.DebugContext(ctx, "joined in-flight scrape", "url", url)
		}
		return core.SourceText(res.Val.(string)), nil
	}
}

// Invalidate drops the cached text for url so the next Resolve scrapes it again.
func (r *Resolver) Invalidate(ctx context.Context, url string) error {
	return r.store.Delete(ctx, Key(url))
}
