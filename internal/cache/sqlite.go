package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"aigency/internal/core"
)

// SQLiteStore persists cached article text on disk so it survives CLI runs.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) aigency.db inside dataDir.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if dataDir == "" {
		dataDir = ".aigency-cache"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "aigency.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	entriesTable := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	if _, err := s.db.Exec(entriesTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ? AND expires_at > ?`,
		key, time.Now().UnixNano())

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO cache_entries (key, value, expires_at, updated_at)
	VALUES (?, ?, ?, ?)`,
		key, value, now.Add(ttl).UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// Stats returns the live entry count and the database file size.
func (s *SQLiteStore) Stats(ctx context.Context) (core.CacheStats, error) {
	stats := core.CacheStats{Backend: "sqlite"}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE expires_at > ?`, time.Now().UnixNano()).Scan(&stats.EntryCount)
	if err != nil {
		return stats, fmt.Errorf("failed to get count: %w", err)
	}

	var updated sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM cache_entries`).Scan(&updated); err != nil {
		return stats, fmt.Errorf("failed to get last update: %w", err)
	}
	if updated.Valid {
		stats.LastUpdated = time.Unix(0, updated.Int64).UTC()
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
	}
	return stats, nil
}

// Clear removes all entries and reclaims disk space.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("failed to clear cache_entries table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// Cleanup deletes expired entries and reports how many were removed.
func (s *SQLiteStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired entries: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
