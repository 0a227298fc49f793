package llm

import (
	"context"
	"log/slog"
	"time"
)

// TextGenerator is the subset of Client used by generation stages.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error)
}

// TracedClient wraps a TextGenerator and records latency and token estimates for every call.
type TracedClient struct {
	client       TextGenerator
	defaultModel string
	log          *slog.Logger
}

// NewTracedClient wraps client. defaultModel is reported when options carry no model.
func NewTracedClient(client TextGenerator, defaultModel string, log *slog.Logger) *TracedClient {
	if log == nil {
		log = slog.Default()
	}
	return &TracedClient{
		client:       client,
		defaultModel: defaultModel,
		log:          log,
	}
}

// GenerateText generates text with tracing
func (tc *TracedClient) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	model := options.Model
	if model == "" {
		model = tc.defaultModel
	}

	startTime := time.Now()
	result, err := tc.client.GenerateText(ctx, prompt, options)
	latency := time.Since(startTime)

	attrs := []any{
		"model", model,
		"structured", options.ResponseSchema != nil,
		"latency_ms", latency.Milliseconds(),
		"estimated_tokens", estimateTokens(prompt, result),
	}
	if err != nil {
		tc.log.WarnContext(ctx, "llm call failed", append(attrs, "error", err.Error())...)
		return "", err
	}
	tc.log.DebugContext(ctx, "llm call completed", attrs...)

	return result, nil
}

func estimateTokens(prompt, completion string) int {
	return (len(prompt) + len(completion)) / 4
}
