package generator

import (
	"context"
	"time"

	"aigency/internal/core"
	"aigency/internal/research"
)

// SourceResolver turns an article URL into source text
type SourceResolver interface {
	// Resolve returns the built-in article for defaultURL and cached or scraped text otherwise
	Resolve(ctx context.Context, url, defaultURL string) (core.SourceText, error)
}

// TextCorrector fixes grammar in generated prose
type TextCorrector interface {
	// Correct returns corrected text; failures leave the text unchanged
	Correct(ctx context.Context, text string, lang core.Language) string
}

// Researcher produces background articles used to augment generation
type Researcher = research.Client

// Embedder creates vector embeddings for the novelty check
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Analytics receives full article outcomes
type Analytics interface {
	ArticleGenerated(ctx context.Context, result *core.ArticleResult, duration time.Duration)
	GenerationFailed(ctx context.Context, url string, err error)
}
