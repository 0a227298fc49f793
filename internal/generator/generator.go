// Package generator runs the article generation stages against the language model and
// assembles their outputs into an article.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aigency/internal/clean"
	"aigency/internal/core"
	"aigency/internal/llm"
	"aigency/internal/logger"
	"aigency/internal/signature"
)

// Generator runs generation stages. Every stage is independently callable so a single
// field can be regenerated without rebuilding the article.
type Generator struct {
	llm        signature.LLMClient
	resolver   SourceResolver
	corrector  TextCorrector // Optional
	researcher Researcher    // Optional
	embedder   Embedder      // Optional
	analytics  Analytics     // Optional

	config  *Config
	log     *slog.Logger
	closers []func() error
}

// Config holds generator configuration
type Config struct {
	// Model settings
	Model       string
	BodyModel   string // Stronger model for the article body; falls back to Model
	Temperature float32
	MaxTokens   int32

	// Content defaults
	Language       core.Language
	TopicsCount    int
	HeadlinesCount int
	TagsCount      int
	DefaultURL     string

	// Research settings
	ResearchRequired bool // Fail the article instead of continuing without research

	// Cosine similarity above which a regenerated output is reported as a near repeat; 0 disables
	NoveltyThreshold float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Model:          llm.DefaultModel,
		Temperature:    0.7,
		Language:       core.LanguageSlovak,
		TopicsCount:    5,
		HeadlinesCount: 3,
		TagsCount:      4,
	}
}

// New creates a Generator. corrector, researcher and embedder may be nil.
func New(
	llmClient signature.LLMClient,
	resolver SourceResolver,
	corrector TextCorrector,
	researcher Researcher,
	embedder Embedder,
	config *Config,
) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Generator{
		llm:        llmClient,
		resolver:   resolver,
		corrector:  corrector,
		researcher: researcher,
		embedder:   embedder,
		config:     config,
		log:        logger.With("component", "generator"),
	}
}

// Close releases the resources opened by the Builder.
func (g *Generator) Close() error {
	var errs []error
	for _, c := range g.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config returns the generator configuration.
func (g *Generator) Config() Config { return *g.config }

// ResolveSource returns the source text for url; an empty url means the default article.
func (g *Generator) ResolveSource(ctx context.Context, url string) (core.SourceText, error) {
	if url == "" {
		url = g.config.DefaultURL
	}
	return g.resolver.Resolve(ctx, url, g.config.DefaultURL)
}

// GenerateTopics lists the topics covered by a source text.
func (g *Generator) GenerateTopics(ctx context.Context, req signature.TopicsRequest) (core.TopicSet, error) {
	req.Language = g.language(req.Language)
	req.Count = positive(req.Count, g.config.TopicsCount)

	sig, err := signature.Topics(req)
	if err != nil {
		return core.TopicSet{}, stageError(signature.KindTopics, err)
	}
	raw, err := g.call(ctx, sig, g.config.Model)
	if err != nil {
		return core.TopicSet{}, err
	}
	topics, err := signature.DecodeTopics(raw, req.Count)
	if err != nil {
		return core.TopicSet{}, stageError(signature.KindTopics, err)
	}
	return topics, nil
}

// GenerateHeadlines produces headline candidates. With a Regenerate mode the prior
// headlines are shown to the model, which must not repeat them.
func (g *Generator) GenerateHeadlines(ctx context.Context, req signature.HeadlinesRequest) (core.HeadlineSet, error) {
	req.Language = g.language(req.Language)
	req.Count = positive(req.Count, g.config.HeadlinesCount)

	sig, err := signature.Headlines(req)
	if err != nil {
		return core.HeadlineSet{}, stageError(signature.KindHeadlines, err)
	}
	raw, err := g.call(ctx, sig, g.config.Model)
	if err != nil {
		return core.HeadlineSet{}, err
	}
	headlines, err := signature.DecodeHeadlines(raw, req.Count)
	if err != nil {
		return core.HeadlineSet{}, stageError(signature.KindHeadlines, err)
	}
	if len(headlines.Headlines) < req.Count {
		g.log.WarnContext(ctx, "fewer headlines than requested",
			"requested", req.Count, "valid", len(headlines.Headlines))
	}
	g.checkNovelty(ctx, signature.KindHeadlines, req.Mode, headlines.Headlines...)
	return headlines, nil
}

// GeneratePerex produces the teaser shown under the headline.
func (g *Generator) GeneratePerex(ctx context.Context, req signature.ContentRequest) (core.Perex, error) {
	req.Language = g.language(req.Language)

	sig, err := signature.Perex(req)
	if err != nil {
		return "", stageError(signature.KindPerex, err)
	}
	raw, err := g.call(ctx, sig, g.config.Model)
	if err != nil {
		return "", err
	}
	perex, err := signature.DecodePerex(raw)
	if err != nil {
		return "", stageError(signature.KindPerex, err)
	}

	perex = core.Perex(g.correct(ctx, string(perex), req.Language))
	if !signature.PerexInBand(string(perex)) {
		g.log.WarnContext(ctx, "perex length outside target band",
			"length", len([]rune(string(perex))),
			"min", signature.PerexMinLen, "max", signature.PerexMaxLen)
	}
	g.checkNovelty(ctx, signature.KindPerex, req.Mode, string(perex))
	return perex, nil
}

// GenerateEngagingText produces the hook published next to the article.
func (g *Generator) GenerateEngagingText(ctx context.Context, req signature.ContentRequest) (core.EngagingText, error) {
	req.Language = g.language(req.Language)

	sig, err := signature.EngagingText(req)
	if err != nil {
		return "", stageError(signature.KindEngagingText, err)
	}
	raw, err := g.call(ctx, sig, g.config.Model)
	if err != nil {
		return "", err
	}
	text, err := signature.DecodeEngagingText(raw)
	if err != nil {
		return "", stageError(signature.KindEngagingText, err)
	}

	text = signature.FitEngagingText(g.correct(ctx, string(text), req.Language))
	g.checkNovelty(ctx, signature.KindEngagingText, req.Mode, string(text))
	return text, nil
}

// GenerateArticleBody produces the article body. It uses the body model when configured.
func (g *Generator) GenerateArticleBody(ctx context.Context, req signature.ContentRequest) (core.ArticleBody, error) {
	req.Language = g.language(req.Language)

	sig, err := signature.Body(req)
	if err != nil {
		return "", stageError(signature.KindBody, err)
	}
	model := g.config.BodyModel
	if model == "" {
		model = g.config.Model
	}
	raw, err := g.call(ctx, sig, model)
	if err != nil {
		return "", err
	}
	body, err := signature.DecodeBody(raw)
	if err != nil {
		return "", stageError(signature.KindBody, err)
	}

	body = core.ArticleBody(g.correct(ctx, string(body), req.Language))
	g.checkNovelty(ctx, signature.KindBody, req.Mode, string(body))
	return body, nil
}

// GenerateTags produces tags for a generated article. Malformed tags are repaired.
func (g *Generator) GenerateTags(ctx context.Context, req signature.TagsRequest) (core.TagSet, error) {
	req.Language = g.language(req.Language)
	req.Count = positive(req.Count, g.config.TagsCount)

	sig, err := signature.Tags(req)
	if err != nil {
		return core.TagSet{}, stageError(signature.KindTags, err)
	}
	raw, err := g.call(ctx, sig, g.config.Model)
	if err != nil {
		return core.TagSet{}, err
	}
	tags, err := signature.DecodeTags(raw, req.Count)
	if err != nil {
		return core.TagSet{}, stageError(signature.KindTags, err)
	}
	tags.Tags = clean.Tags(tags.Tags)
	g.checkNovelty(ctx, signature.KindTags, req.Mode, tags.Tags...)
	return tags, nil
}

// GenerateGraph describes an optional chart for the source text. Unusable chart data
// turns the chart off instead of failing.
func (g *Generator) GenerateGraph(ctx context.Context, req signature.GraphRequest) (core.GraphSpec, error) {
	req.Language = g.language(req.Language)

	sig, err := signature.Graph(req)
	if err != nil {
		return core.GraphSpec{}, stageError(signature.KindGraph, err)
	}
	raw, err := g.call(ctx, sig, g.config.Model)
	if err != nil {
		return core.GraphSpec{}, err
	}
	rawSpec, err := signature.DecodeGraph(raw)
	if err != nil {
		return core.GraphSpec{}, stageError(signature.KindGraph, err)
	}

	spec := clean.Graph(rawSpec)
	if rawSpec.GenGraph && !spec.ShouldGenerate {
		g.log.InfoContext(ctx, "chart disabled after cleaning", "graph_type", rawSpec.GraphType)
	}
	return spec, nil
}

// RegenerateHeadlines produces headlines that differ from prior.
func (g *Generator) RegenerateHeadlines(ctx context.Context, req signature.HeadlinesRequest, prior []string) (core.HeadlineSet, error) {
	mode, err := regenerateMode(signature.KindHeadlines, prior, req.Mode.Augmentation())
	if err != nil {
		return core.HeadlineSet{}, err
	}
	req.Mode = mode
	return g.GenerateHeadlines(ctx, req)
}

// RegeneratePerex produces a perex that differs from prior.
func (g *Generator) RegeneratePerex(ctx context.Context, req signature.ContentRequest, prior string) (core.Perex, error) {
	mode, err := regenerateMode(signature.KindPerex, []string{prior}, req.Mode.Augmentation())
	if err != nil {
		return "", err
	}
	req.Mode = mode
	return g.GeneratePerex(ctx, req)
}

// RegenerateEngagingText produces an engaging text that differs from prior.
func (g *Generator) RegenerateEngagingText(ctx context.Context, req signature.ContentRequest, prior string) (core.EngagingText, error) {
	mode, err := regenerateMode(signature.KindEngagingText, []string{prior}, req.Mode.Augmentation())
	if err != nil {
		return "", err
	}
	req.Mode = mode
	return g.GenerateEngagingText(ctx, req)
}

// RegenerateArticleBody produces an article body that differs from prior.
func (g *Generator) RegenerateArticleBody(ctx context.Context, req signature.ContentRequest, prior string) (core.ArticleBody, error) {
	mode, err := regenerateMode(signature.KindBody, []string{prior}, req.Mode.Augmentation())
	if err != nil {
		return "", err
	}
	req.Mode = mode
	return g.GenerateArticleBody(ctx, req)
}

// RegenerateTags produces tags that differ from prior.
func (g *Generator) RegenerateTags(ctx context.Context, req signature.TagsRequest, prior []string) (core.TagSet, error) {
	mode, err := regenerateMode(signature.KindTags, prior, req.Mode.Augmentation())
	if err != nil {
		return core.TagSet{}, err
	}
	req.Mode = mode
	return g.GenerateTags(ctx, req)
}

func (g *Generator) call(ctx context.Context, sig signature.Signature, model string) (string, error) {
	opts := sig.Options(model, g.config.Temperature)
	opts.MaxTokens = g.config.MaxTokens

	start := time.Now()
	g.log.DebugContext(ctx, "stage started", "stage", sig.Kind, "variant", sig.Variant.String())
	raw, err := g.llm.GenerateText(ctx, sig.Prompt(), opts)
	if err != nil {
		return "", stageError(sig.Kind, err)
	}
	g.log.InfoContext(ctx, "stage completed",
		"stage", sig.Kind, "variant", sig.Variant.String(), "duration", time.Since(start))
	return raw, nil
}

func (g *Generator) correct(ctx context.Context, text string, lang core.Language) string {
	if g.corrector == nil {
		return text
	}
	return g.corrector.Correct(ctx, text, lang)
}

func (g *Generator) language(lang core.Language) core.Language {
	if lang != "" {
		return lang
	}
	if g.config.Language != "" {
		return g.config.Language
	}
	return core.LanguageSlovak
}

// stageError wraps err as a GenerationError. Unsupported mode combinations are caller
// errors and pass through unchanged.
// regenerateMode builds the mode for a Regenerate* call. Blank prior output is an error
// rather than a silent fresh generation.
func regenerateMode(kind signature.Kind, prior []string, augment string) (signature.Mode, error) {
	mode := signature.ModeFor(prior, augment)
	if !mode.IsRegeneration() {
		return mode, stageError(kind, signature.ErrMissingPrior)
	}
	return mode, nil
}

func stageError(kind signature.Kind, err error) error {
	var unsupported *core.UnsupportedCombinationError
	if errors.As(err, &unsupported) {
		return err
	}
	var genErr *core.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &core.GenerationError{Stage: kind.Stage(), Err: err}
}

func positive(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
