package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aigency/internal/core"
	"aigency/internal/research"
	"aigency/internal/signature"
)

// ArticleRequest configures full article generation
type ArticleRequest struct {
	URL            string        // Source URL; empty means the default article
	Topic          string        // Selected topic; empty picks the first generated topic
	Augment        bool          // Ask the research service for a background article
	HeadlinesCount int           // Optional
	TagsCount      int           // Optional
	Language       core.Language // Optional
}

// GenerateArticle runs every stage once, without priors, and assembles the result.
// A failing stage aborts the whole article; no partial result is returned.
func (g *Generator) GenerateArticle(ctx context.Context, req ArticleRequest) (*core.ArticleResult, error) {
	startTime := time.Now()
	result, err := g.generateArticle(ctx, req)
	if g.analytics != nil {
		if err != nil {
			g.analytics.GenerationFailed(ctx, req.URL, err)
		} else {
			g.analytics.ArticleGenerated(ctx, result, time.Since(startTime))
		}
	}
	return result, err
}

func (g *Generator) generateArticle(ctx context.Context, req ArticleRequest) (*core.ArticleResult, error) {
	startTime := time.Now()
	lang := g.language(req.Language)
	url := req.URL
	if url == "" {
		url = g.config.DefaultURL
	}
	log := g.log.With("url", url)

	source, err := g.resolver.Resolve(ctx, url, g.config.DefaultURL)
	if err != nil {
		return nil, err
	}

	topic := req.Topic
	if topic == "" {
		topics, err := g.GenerateTopics(ctx, signature.TopicsRequest{Source: source, Language: lang})
		if err != nil {
			return nil, err
		}
		topic = topics.Topics[0]
		log.InfoContext(ctx, "topic selected", "topic", topic, "candidates", len(topics.Topics))
	}

	mode := signature.Fresh()
	var references []string
	if req.Augment {
		result, err := g.research(ctx, topic, url)
		switch {
		case err != nil && g.config.ResearchRequired:
			return nil, &core.GenerationError{Stage: core.StageResearch, Err: err}
		case err != nil:
			log.WarnContext(ctx, "research failed, continuing without augmentation", "error", err.Error())
		default:
			mode = signature.Augmented(result.Article)
			references = research.ExtractReferenceURLs(result.Article)
		}
	}

	headlines, err := g.GenerateHeadlines(ctx, signature.HeadlinesRequest{
		Source:   source,
		Topic:    topic,
		Count:    req.HeadlinesCount,
		Language: lang,
	})
	if err != nil {
		return nil, err
	}
	headline := headlines.Headlines[0]

	content := signature.ContentRequest{
		Source:   source,
		Topic:    topic,
		Headline: headline,
		Language: lang,
		Mode:     mode,
	}

	perex, err := g.GeneratePerex(ctx, content)
	if err != nil {
		return nil, err
	}
	engagingText, err := g.GenerateEngagingText(ctx, content)
	if err != nil {
		return nil, err
	}
	body, err := g.GenerateArticleBody(ctx, content)
	if err != nil {
		return nil, err
	}

	tags, err := g.GenerateTags(ctx, signature.TagsRequest{
		Source:   source,
		Topic:    topic,
		Headline: headline,
		Body:     string(body),
		Count:    req.TagsCount,
		Language: lang,
	})
	if err != nil {
		return nil, err
	}

	graph, err := g.GenerateGraph(ctx, signature.GraphRequest{Source: source, Language: lang, Mode: mode})
	if err != nil {
		return nil, err
	}

	result := &core.ArticleResult{
		ID:           uuid.NewString(),
		URL:          url,
		Topic:        topic,
		Headline:     headline,
		Headlines:    headlines.Headlines,
		Perex:        string(perex),
		EngagingText: string(engagingText),
		Body:         string(body),
		Tags:         tags.Tags,
		Graph:        &graph,
		Language:     lang,
		Augmented:    mode.IsAugmented(),
		References:   references,
		GeneratedAt:  time.Now().UTC(),
	}

	log.InfoContext(ctx, "article generated",
		"id", result.ID,
		"paragraphs", len(body.Paragraphs()),
		"tags", len(result.Tags),
		"graph", graph.ShouldGenerate,
		"augmented", result.Augmented,
		"duration", time.Since(startTime))
	return result, nil
}

// Research fetches a background article for topic. It fails when no research service
// is configured.
func (g *Generator) Research(ctx context.Context, topic, url string) (*research.Result, error) {
	return g.research(ctx, topic, url)
}

func (g *Generator) research(ctx context.Context, topic, url string) (*research.Result, error) {
	if g.researcher == nil {
		return nil, fmt.Errorf("research service is not configured")
	}
	start := time.Now()
	result, err := g.researcher.Research(ctx, topic, url)
	if err != nil {
		return nil, err
	}
	g.log.InfoContext(ctx, "research completed", "topic", topic, "duration", time.Since(start))
	return result, nil
}
