package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultJinaURL is the Jina reader endpoint; the target URL is appended to it.
const DefaultJinaURL = "https://r.jina.ai/"

// JinaScraper reads pages through the Jina reader API, which returns page text as markdown.
type JinaScraper struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewJinaScraper creates a Jina reader client. An empty baseURL uses DefaultJinaURL.
func NewJinaScraper(baseURL, apiKey string, timeout time.Duration) *JinaScraper {
	if baseURL == "" {
		baseURL = DefaultJinaURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &JinaScraper{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (j *JinaScraper) Scrape(ctx context.Context, rawURL string) (string, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	if j.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.apiKey)
	}
	req.Header.Set("X-Timeout", "5")

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("no text returned for %s", rawURL)
	}
	return text, nil
}
