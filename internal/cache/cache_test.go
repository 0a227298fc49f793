package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aigency/internal/config"
	"aigency/internal/core"
)

const defaultURL = "https://example.com/default"

type mockScraper struct {
	calls   atomic.Int32
	text    string
	err     error
	release chan struct{}
	entered chan struct{}
}

func (m *mockScraper) Scrape(ctx context.Context, _ string) (string, error) {
	m.calls.Add(1)
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.text, m.err
}

type failingStore struct {
	*MemoryStore
}

func (f failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("disk full")
}

func TestResolveDefaultURLNeverScrapes(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	scraper := &mockScraper{text: "scraped"}
	r := NewResolver(store, scraper, time.Minute, nil)

	// a cached value under the default URL must not change the result
	_ = store.Set(context.Background(), Key(defaultURL), "stale", time.Minute)

	for i := 0; i < 3; i++ {
		text, err := r.Resolve(context.Background(), defaultURL, defaultURL)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if text != core.DefaultArticle {
			t.Errorf("expected the built-in article, got %q", text)
		}
	}
	if n := scraper.calls.Load(); n != 0 {
		t.Errorf("expected zero scrape calls, got %d", n)
	}
}

func TestResolveCachesScrapedText(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	scraper := &mockScraper{text: "Nafta zlacnela."}
	r := NewResolver(store, scraper, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		text, err := r.Resolve(ctx, "https://example.com/a", defaultURL)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if text != "Nafta zlacnela." {
			t.Errorf("unexpected text %q", text)
		}
	}
	if n := scraper.calls.Load(); n != 1 {
		t.Errorf("expected one scrape call, got %d", n)
	}

	cached, found, _ := store.Get(ctx, "article:https://example.com/a")
	if !found || cached != "Nafta zlacnela." {
		t.Errorf("expected text under article: key, got %q (found=%v)", cached, found)
	}

	if err := r.Invalidate(ctx, "https://example.com/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve(ctx, "https://example.com/a", defaultURL); err != nil {
		t.Fatal(err)
	}
	if n := scraper.calls.Load(); n != 2 {
		t.Errorf("expected a new scrape after invalidation, got %d calls", n)
	}
}

func TestResolveWrapsScrapeErrors(t *testing.T) {
	scraper := &mockScraper{err: core.ErrInvalidURL}
	r := NewResolver(NewMemoryStore(time.Minute), scraper, time.Minute, nil)

	_, err := r.Resolve(context.Background(), "bad url", defaultURL)
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.URL != "bad url" || !errors.Is(err, core.ErrInvalidURL) {
		t.Errorf("unexpected fetch error: %v", fetchErr)
	}
	if stage, _ := core.StageOf(err); stage != core.StageFetch {
		t.Errorf("expected fetch stage, got %q", stage)
	}

	// failures are not cached
	if _, err := r.Resolve(context.Background(), "bad url", defaultURL); err == nil {
		t.Error("expected second call to fail too")
	}
	if n := scraper.calls.Load(); n != 2 {
		t.Errorf("expected one attempt per call, got %d", n)
	}
}

func TestResolveIgnoresCacheWriteFailure(t *testing.T) {
	scraper := &mockScraper{text: "text"}
	r := NewResolver(failingStore{NewMemoryStore(time.Minute)}, scraper, time.Minute, nil)

	text, err := r.Resolve(context.Background(), "https://example.com/b", defaultURL)
	if err != nil || text != "text" {
		t.Errorf("Resolve() = %q, %v", text, err)
	}
}

// Concurrent misses for one URL are collapsed while a scrape is in flight. A caller that
// misses the cache just as another scrape finishes may still scrape again; the later
// write wins, which is acceptable for article text.
func TestResolveConcurrentMisses(t *testing.T) {
	scraper := &mockScraper{text: "shared", release: make(chan struct{})}
	r := NewResolver(NewMemoryStore(time.Minute), scraper, time.Minute, nil)

	const callers = 8
	results := make([]core.SourceText, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, err := r.Resolve(context.Background(), "https://example.com/c", defaultURL)
			if err != nil {
				t.Errorf("Resolve() error: %v", err)
			}
			results[i] = text
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(scraper.release)
	wg.Wait()

	for i, text := range results {
		if text != "shared" {
			t.Errorf("caller %d got %q", i, text)
		}
	}
	n := scraper.calls.Load()
	if n < 1 || n > callers {
		t.Errorf("unexpected scrape count %d", n)
	}
	t.Logf("%d concurrent callers caused %d scrape(s)", callers, n)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	if _, found, _ := store.Get(ctx, "missing"); found {
		t.Error("expected miss")
	}
	_ = store.Set(ctx, "k", "v", 0)
	_ = store.Set(ctx, "short", "v", 10*time.Millisecond)

	if v, found, _ := store.Get(ctx, "k"); !found || v != "v" {
		t.Errorf("Get() = %q, %v", v, found)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found, _ := store.Get(ctx, "short"); found {
		t.Error("expected expired entry to be missing")
	}

	stats, _ := store.Stats(ctx)
	if stats.Backend != "memory" || stats.EntryCount != 1 || stats.LastUpdated.IsZero() {
		t.Errorf("unexpected stats: %+v", stats)
	}

	_ = store.Clear(ctx)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expected cleared store")
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Set(ctx, Key("https://example.com/a"), "Cena benzínu klesla.", time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := store.Set(ctx, Key("https://example.com/old"), "old", time.Millisecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	v, found, err := store.Get(ctx, Key("https://example.com/a"))
	if err != nil || !found || v != "Cena benzínu klesla." {
		t.Errorf("Get() = %q, %v, %v", v, found, err)
	}
	if _, found, _ := store.Get(ctx, Key("https://example.com/old")); found {
		t.Error("expected expired entry to be missing")
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.EntryCount != 1 || stats.CacheSize == 0 || stats.LastUpdated.IsZero() {
		t.Errorf("unexpected stats: %+v", stats)
	}

	removed, err := store.Cleanup(ctx)
	if err != nil || removed != 1 {
		t.Errorf("Cleanup() = %d, %v", removed, err)
	}

	if err := store.Delete(ctx, Key("https://example.com/a")); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := store.Get(ctx, Key("https://example.com/a")); found {
		t.Error("expected deleted entry to be missing")
	}

	_ = store.Set(ctx, "k", "v", time.Hour)
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if stats, _ := store.Stats(ctx); stats.EntryCount != 0 {
		t.Errorf("expected empty store, got %d entries", stats.EntryCount)
	}
}

func TestNewStore(t *testing.T) {
	store, err := New(config.Cache{Backend: "memory", TTL: "30m"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", store)
	}

	store, err = New(config.Cache{Backend: "sqlite", Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_ = store.Close()

	if _, err := New(config.Cache{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	key := Key("https://example.com/redis-test")
	if err := store.Set(ctx, key, "hodnota", time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if v, found, err := store.Get(ctx, key); err != nil || !found || v != "hodnota" {
		t.Errorf("Get() = %q, %v, %v", v, found, err)
	}
	_ = store.Delete(ctx, key)
	if _, found, _ := store.Get(ctx, key); found {
		t.Error("expected deleted key to be missing")
	}
}

func TestResolveSharedScrapeSurvivesCallerCancel(t *testing.T) {
	scraper := &mockScraper{text: "shared", release: make(chan struct{}), entered: make(chan struct{}, 8)}
	r := NewResolver(NewMemoryStore(time.Minute), scraper, time.Minute, nil)
	const url = "https://example.com/x"

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctxA, url, defaultURL)
		errA <- err
	}()
	<-scraper.entered

	type result struct {
		text core.SourceText
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		text, err := r.Resolve(context.Background(), url, defaultURL)
		resB <- result{text, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	err := <-errA
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller error = %v, want context.Canceled", err)
	}
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("cancelled caller error = %T, want *core.FetchError", err)
	}

	close(scraper.release)
	got := <-resB
	if got.err != nil || got.text != "shared" {
		t.Errorf("live caller got %q, %v", got.text, got.err)
	}
	if n := scraper.calls.Load(); n != 1 {
		t.Errorf("expected one shared scrape, got %d", n)
	}
}
