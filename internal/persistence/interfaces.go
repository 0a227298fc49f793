// Package persistence stores generated articles in PostgreSQL
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a stored article does not exist
var ErrNotFound = errors.New("article not found")

// ArticleRepository handles generated article persistence operations
type ArticleRepository interface {
	// Save stores the article record in one transaction and returns its ID
	Save(ctx context.Context, data ArticleData) (int64, error)

	// Get retrieves a stored article record by ID
	Get(ctx context.Context, id int64) (*ArticleData, error)

	// List retrieves the most recently stored article records
	List(ctx context.Context, limit int) ([]StoredArticle, error)

	// Delete removes an article and every field stored with it
	Delete(ctx context.Context, id int64) error
}

// Database provides access to repositories
type Database interface {
	Articles() ArticleRepository
	Ping(ctx context.Context) error
	Close() error
}

// StoredArticle is a listing entry for a saved article
type StoredArticle struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Heading  string `json:"heading"`
	Topic    string `json:"topic"`
	Language string `json:"language"`
}
