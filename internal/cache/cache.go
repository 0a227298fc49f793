// Package cache provides TTL key-value stores for scraped article text and the
// resolver that turns a URL into source text.
package cache

import (
	"context"
	"fmt"
	"time"

	"aigency/internal/config"
	"aigency/internal/core"
)

// Store is a key-value store with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Stats(ctx context.Context) (core.CacheStats, error)
	Clear(ctx context.Context) error
	Close() error
}

// New creates the store selected by the cache configuration.
func New(cfg config.Cache) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(config.Duration(cfg.TTL, DefaultTTL)), nil
	case "redis":
		return NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	case "sqlite":
		return NewSQLiteStore(cfg.Directory)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
