// Package llm wraps the Gemini API for schema-constrained generation and embeddings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"aigency/internal/config"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for generation stages.
	DefaultModel = "gemini-2.5-flash"
	// DefaultEmbeddingModel is the default model for the novelty check embeddings
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions is the output dimension for embeddings (Matryoshka)
	DefaultEmbeddingDimensions = int32(768)
	// maxEmbeddingRunes caps the text sent to the embedding model.
	maxEmbeddingRunes = 8000
)

// ErrEmptyResponse is returned when the model produced no text, usually because the
// candidate was blocked.
var ErrEmptyResponse = errors.New("empty response from LLM")

// Client generates text and embeddings with Gemini.
type Client struct {
	modelName      string
	embeddingModel string
	maxTokens      int32
	timeout        time.Duration
	gClient        *genai.Client
}

// TextGenerationOptions contains options for a single generation call
type TextGenerationOptions struct {
	MaxTokens      int32         // Optional, defaults to the client limit
	Temperature    float32       // 0 leaves the model default
	Model          string        // Optional, defaults to the client's model
	ResponseSchema *genai.Schema // Optional: JSON schema for structured output
}

// NewClient creates a Gemini client from the ai.gemini configuration. A non-empty model
// overrides cfg.Model.
func NewClient(cfg config.GeminiConfig, model string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://aistudio.google.com/app/apikey")
	}

	if model == "" {
		model = cfg.Model
	}
	if model == "" {
		model = DefaultModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName:      model,
		embeddingModel: embeddingModel,
		maxTokens:      cfg.MaxTokens,
		timeout:        config.Duration(cfg.Timeout, 0),
		gClient:        gClient,
	}, nil
}

// GenerateText runs one generation call. With a ResponseSchema the model answers with
// JSON conforming to it.
func (c *Client) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	modelName := c.modelName
	if options.Model != "" {
		modelName = options.Model
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  genai.RoleUser,
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, modelName, contents, c.generationConfig(options))
	if err != nil {
		return "", fmt.Errorf("failed to generate text with %s: %w", modelName, err)
	}

	text := resp.Text()
	if text == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			return "", fmt.Errorf("%w (finish reason %s)", ErrEmptyResponse, resp.Candidates[0].FinishReason)
		}
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) generationConfig(options TextGenerationOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = maxTokens
	}
	if options.Temperature > 0 {
		config.Temperature = genai.Ptr(options.Temperature)
	}
	if options.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = options.ResponseSchema
	}
	return config
}

// GenerateEmbedding returns a vector embedding of text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	if runes := []rune(text); len(runes) > maxEmbeddingRunes {
		text = string(runes[:maxEmbeddingRunes])
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := c.gClient.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(DefaultEmbeddingDimensions),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embedding values returned from API")
	}

	values := resp.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, val := range values {
		embedding[i] = float64(val)
	}
	return embedding, nil
}

// CosineSimilarity returns the cosine of the angle between two embeddings, or 0 when
// they cannot be compared.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Close releases the client. The genai client holds no resources that need closing.
func (c *Client) Close() {}

// GetModelName returns the default model of this client
func (c *Client) GetModelName() string {
	return c.modelName
}
