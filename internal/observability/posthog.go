// Package observability reports article generation events to PostHog.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aigency/internal/config"
	"aigency/internal/core"
	"aigency/internal/logger"

	"github.com/posthog/posthog-go"
)

const systemID = "aigency"

// PostHogClient wraps the PostHog SDK for product analytics
type PostHogClient struct {
	client  posthog.Client
	enabled bool
	log     *slog.Logger
}

// EventProperties contains properties for an event
type EventProperties map[string]any

// NewPostHogClient creates a new PostHog analytics client. A disabled configuration
// yields a client that drops every event.
func NewPostHogClient(cfg config.Analytics) (*PostHogClient, error) {
	log := logger.With("component", "analytics")
	if !cfg.Enabled {
		return &PostHogClient{enabled: false, log: log}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return newWithClient(client, log), nil
}

func newWithClient(client posthog.Client, log *slog.Logger) *PostHogClient {
	return &PostHogClient{client: client, enabled: true, log: log}
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(ctx context.Context, distinctID string, event string, properties EventProperties) error {
	if !p.enabled {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	return p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	})
}

// ArticleGenerated tracks a completed article
func (p *PostHogClient) ArticleGenerated(ctx context.Context, result *core.ArticleResult, duration time.Duration) {
	props := EventProperties{
		"article_id":  result.ID,
		"url":         result.URL,
		"language":    string(result.Language),
		"headlines":   len(result.Headlines),
		"paragraphs":  len(core.ArticleBody(result.Body).Paragraphs()),
		"tags":        len(result.Tags),
		"augmented":   result.Augmented,
		"graph":       result.Graph != nil && result.Graph.ShouldGenerate,
		"duration_ms": duration.Milliseconds(),
	}
	if err := p.Capture(ctx, systemID, "article_generated", props); err != nil {
		p.log.Warn("Failed to track article", "error", err.Error())
	}
}

// GenerationFailed tracks an article that failed at some stage
func (p *PostHogClient) GenerationFailed(ctx context.Context, url string, err error) {
	stage := "unknown"
	if s, ok := core.StageOf(err); ok {
		stage = string(s)
	}
	props := EventProperties{
		"url":           url,
		"stage":         stage,
		"error_message": err.Error(),
	}
	if err := p.Capture(ctx, systemID, "article_failed", props); err != nil {
		p.log.Warn("Failed to track generation failure", "error", err.Error())
	}
}

// Close flushes pending events and shuts the client down
func (p *PostHogClient) Close() error {
	if !p.enabled {
		return nil
	}
	return p.client.Close()
}
