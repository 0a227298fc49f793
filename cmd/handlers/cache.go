package handlers

import (
	"context"
	"fmt"
	"os"

	"aigency/internal/cache"
	"aigency/internal/config"
	"aigency/internal/logger"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the scraped article cache",
		Long:  `Inspect and clean the cache of scraped source texts (memory, sqlite or redis backend).`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())
	cacheCmd.AddCommand(newCacheCleanupCmd())
	cacheCmd.AddCommand(newCacheInvalidateCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get cache statistics: %w", err)
				}

				fmt.Println("📊 Cache Statistics")
				fmt.Println("==================")
				fmt.Printf("Backend: %s\n", stats.Backend)
				fmt.Printf("📄 Articles cached: %d\n", stats.EntryCount)
				if stats.CacheSize > 0 {
					fmt.Printf("💾 Cache size: %.2f MB\n", float64(stats.CacheSize)/1024/1024)
				}
				if !stats.LastUpdated.IsZero() {
					fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache (removes all cached articles)",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				fmt.Print("⚠️  This will remove all cached articles. Continue? [y/N]: ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" && response != "yes" {
					fmt.Println("Cache clear cancelled")
					return nil
				}
			}

			return withStore(func(store cache.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Println("✅ Cache cleared successfully")
				return nil
			})
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func newCacheCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired entries from the sqlite cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store cache.Store) error {
				sqlite, ok := store.(*cache.SQLiteStore)
				if !ok {
					fmt.Println("Nothing to clean up: this backend expires entries itself")
					return nil
				}
				removed, err := sqlite.Cleanup(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to clean up cache: %w", err)
				}
				fmt.Printf("🧹 Removed %d expired entries\n", removed)
				return nil
			})
		},
	}
}

func newCacheInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <url>",
		Short: "Drop the cached text of one URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store cache.Store) error {
				return invalidate(cmd.Context(), store, args[0])
			})
		},
	}
}

func invalidate(ctx context.Context, store cache.Store, url string) error {
	if err := store.Delete(ctx, cache.Key(url)); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", url, err)
	}
	fmt.Printf("Removed %s from the cache\n", url)
	return nil
}

func withStore(fn func(cache.Store) error) error {
	store, err := cache.New(config.Get().Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	if config.Get().Cache.Backend == "" || config.Get().Cache.Backend == "memory" {
		fmt.Fprintln(os.Stderr, "Note: the memory cache only lives inside a running process")
	}
	return fn(store)
}
