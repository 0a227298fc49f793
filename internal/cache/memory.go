package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"aigency/internal/core"
)

// DefaultTTL is how long scraped article text stays cached.
const DefaultTTL = time.Hour

// MemoryStore is an in-process store backed by patrickmn/go-cache.
type MemoryStore struct {
	cache     *gocache.Cache
	lastWrite atomic.Int64
}

// NewMemoryStore creates a memory store whose expired entries are purged every defaultTTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &MemoryStore{cache: gocache.New(defaultTTL, defaultTTL)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	val, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := val.(string)
	return s, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.cache.Set(key, value, ttl)
	m.lastWrite.Store(time.Now().UnixNano())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Stats reports the number of live entries and the summed size of their values.
func (m *MemoryStore) Stats(_ context.Context) (core.CacheStats, error) {
	stats := core.CacheStats{Backend: "memory"}
	for _, item := range m.cache.Items() {
		stats.EntryCount++
		if s, ok := item.Object.(string); ok {
			stats.CacheSize += int64(len(s))
		}
	}
	if ts := m.lastWrite.Load(); ts > 0 {
		stats.LastUpdated = time.Unix(0, ts).UTC()
	}
	return stats, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.cache.Flush()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
