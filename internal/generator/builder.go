package generator

import (
	"fmt"

	"aigency/internal/cache"
	"aigency/internal/config"
	"aigency/internal/core"
	"aigency/internal/grammar"
	"aigency/internal/llm"
	"aigency/internal/logger"
	"aigency/internal/observability"
	"aigency/internal/research"
	"aigency/internal/scrape"
	"aigency/internal/signature"
)

// Builder helps construct a fully configured Generator
type Builder struct {
	cfg          *config.Config
	llmClient    signature.LLMClient
	embedder     Embedder
	store        cache.Store
	scraper      scrape.Scraper
	analytics    Analytics
	skipGrammar  bool
	skipResearch bool
}

// NewBuilder creates a new generator builder from application configuration
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithLLMClient sets the LLM client instead of creating a Gemini client
func (b *Builder) WithLLMClient(client signature.LLMClient) *Builder {
	b.llmClient = client
	return b
}

// WithEmbedder sets the embedder used by the novelty check
func (b *Builder) WithEmbedder(embedder Embedder) *Builder {
	b.embedder = embedder
	return b
}

// WithStore sets the cache store instead of creating one from configuration
func (b *Builder) WithStore(store cache.Store) *Builder {
	b.store = store
	return b
}

// WithScraper sets the scraper instead of creating one from configuration
func (b *Builder) WithScraper(scraper scrape.Scraper) *Builder {
	b.scraper = scraper
	return b
}

// WithAnalytics sets the analytics sink instead of creating one from configuration
func (b *Builder) WithAnalytics(analytics Analytics) *Builder {
	b.analytics = analytics
	return b
}

// WithoutGrammar disables grammar correction
func (b *Builder) WithoutGrammar() *Builder {
	b.skipGrammar = true
	return b
}

// WithoutResearch disables the research service
func (b *Builder) WithoutResearch() *Builder {
	b.skipResearch = true
	return b
}

// Build constructs a fully configured Generator. Close the generator to release the
// cache store and the LLM client.
func (b *Builder) Build() (*Generator, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	cfg := b.cfg

	genConfig, err := ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	llmClient, embedder := b.llmClient, b.embedder
	if llmClient == nil {
		client, err := llm.NewClient(cfg.AI.Gemini, genConfig.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		closers = append(closers, func() error { client.Close(); return nil })
		llmClient = llm.NewTracedClient(client, client.GetModelName(), logger.With("component", "llm"))
		if embedder == nil && genConfig.NoveltyThreshold > 0 {
			embedder = client
		}
	}

	store := b.store
	if store == nil {
		store, err = cache.New(cfg.Cache)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		closers = append(closers, store.Close)
	}

	scraper := b.scraper
	if scraper == nil {
		scraper, err = scrape.New(cfg.Scraper)
		if err != nil {
			closeAll()
			return nil, err
		}
	}

	resolver := cache.NewResolver(store, scraper,
		config.Duration(cfg.Cache.TTL, cache.DefaultTTL), logger.With("component", "resolver"))

	var corrector TextCorrector
	if cfg.Grammar.Enabled && !b.skipGrammar {
		corrector = grammar.NewFromConfig(cfg.Grammar, logger.With("component", "grammar"))
	}

	var researcher Researcher
	if cfg.Research.Enabled && !b.skipResearch {
		researcher = research.NewStormClient(cfg.Research.Endpoint,
			config.Duration(cfg.Research.Timeout, research.DefaultTimeout))
	}

	analytics := b.analytics
	if analytics == nil && cfg.Analytics.Enabled {
		client, err := observability.NewPostHogClient(cfg.Analytics)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, client.Close)
		analytics = client
	}

	g := New(llmClient, resolver, corrector, researcher, embedder, genConfig)
	g.analytics = analytics
	g.closers = closers
	return g, nil
}

// ConfigFrom derives generator settings from application configuration.
func ConfigFrom(cfg *config.Config) (*Config, error) {
	lang, err := core.ParseLanguage(cfg.Generation.Language)
	if err != nil {
		return nil, err
	}

	genConfig := DefaultConfig()
	genConfig.Language = lang
	if cfg.AI.Gemini.Model != "" {
		genConfig.Model = cfg.AI.Gemini.Model
	}
	genConfig.BodyModel = cfg.AI.Gemini.BodyModel
	if cfg.AI.Gemini.Temperature > 0 {
		genConfig.Temperature = cfg.AI.Gemini.Temperature
	}
	genConfig.MaxTokens = cfg.AI.Gemini.MaxTokens
	genConfig.TopicsCount = positive(cfg.Generation.TopicsCount, genConfig.TopicsCount)
	genConfig.HeadlinesCount = positive(cfg.Generation.HeadlinesCount, genConfig.HeadlinesCount)
	genConfig.TagsCount = positive(cfg.Generation.TagsCount, genConfig.TagsCount)
	genConfig.DefaultURL = cfg.Generation.DefaultURL
	if genConfig.DefaultURL == "" {
		genConfig.DefaultURL = config.DefaultArticleURL
	}
	genConfig.ResearchRequired = cfg.Research.Required
	genConfig.NoveltyThreshold = float64(cfg.Generation.NoveltyThreshold)
	return genConfig, nil
}
