package llm

import (
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"aigency/internal/config"

	"google.golang.org/genai"
)

func TestNewClient(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	client, err := NewClient(config.GeminiConfig{APIKey: apiKey}, "")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if client.GetModelName() != DefaultModel {
		t.Errorf("model = %q, want %q", client.GetModelName(), DefaultModel)
	}
	if client.embeddingModel != DefaultEmbeddingModel {
		t.Errorf("embedding model = %q, want %q", client.embeddingModel, DefaultEmbeddingModel)
	}

	client, err = NewClient(config.GeminiConfig{APIKey: apiKey, Model: "gemini-2.5-flash-lite"}, "gemini-2.5-pro")
	if err != nil {
		t.Fatalf("NewClient with model override failed: %v", err)
	}
	if client.GetModelName() != "gemini-2.5-pro" {
		t.Errorf("model = %q, want the override", client.GetModelName())
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.GeminiConfig{Model: DefaultModel}, "")
	if err == nil {
		t.Fatal("Expected error when no API key is available")
	}
	if !strings.Contains(err.Error(), "gemini API key is required") {
		t.Errorf("Expected API key error, got: %v", err)
	}
}

func TestGenerationConfig(t *testing.T) {
	client := &Client{modelName: DefaultModel, maxTokens: 4096}

	cfg := client.generationConfig(TextGenerationOptions{})
	if cfg.MaxOutputTokens != 4096 || cfg.Temperature != nil || cfg.ResponseMIMEType != "" {
		t.Errorf("default config = %+v", cfg)
	}

	schema := &genai.Schema{Type: genai.TypeObject}
	cfg = client.generationConfig(TextGenerationOptions{MaxTokens: 256, Temperature: 0.4, ResponseSchema: schema})
	if cfg.MaxOutputTokens != 256 {
		t.Errorf("MaxOutputTokens = %d, want 256", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", cfg.Temperature)
	}
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema != schema {
		t.Error("structured output not requested")
	}
}

func TestGenerateText_EmptyPrompt(t *testing.T) {
	client := &Client{modelName: DefaultModel}
	if _, err := client.GenerateText(context.Background(), "", TextGenerationOptions{}); err == nil {
		t.Error("Expected error for empty prompt")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, expected %f", got, tt.expected)
			}
		})
	}
}

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestTracedClientPassesThrough(t *testing.T) {
	stub := &stubGenerator{response: `{"topics":["A"]}`}
	traced := NewTracedClient(stub, DefaultModel, nil)

	got, err := traced.GenerateText(context.Background(), "prompt", TextGenerationOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != stub.response || stub.calls != 1 {
		t.Errorf("expected passthrough response, got %q after %d calls", got, stub.calls)
	}

	stub.err = errors.New("quota exceeded")
	if _, err := traced.GenerateText(context.Background(), "prompt", TextGenerationOptions{}); !errors.Is(err, stub.err) {
		t.Errorf("expected underlying error, got %v", err)
	}
}
