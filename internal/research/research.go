// Package research talks to the STORM research service, which writes a long-form,
// cited background article for a topic. Generation stages use it as a secondary source.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout covers STORM's multi-turn research, which takes minutes.
const DefaultTimeout = 10 * time.Minute

// Reference is one source cited by a research article.
type Reference struct {
	Key   int    `json:"key"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Result is a finished research article.
type Result struct {
	Topic      string      `json:"topic"`
	Article    string      `json:"article"`
	References []Reference `json:"references,omitempty"`
}

// Client produces research articles.
type Client interface {
	Research(ctx context.Context, topic, articleURL string) (*Result, error)
}

// StormClient calls a STORM service over HTTP.
type StormClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewStormClient creates a client for the service at endpoint.
func NewStormClient(endpoint string, timeout time.Duration) *StormClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StormClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type researchRequest struct {
	Topic string `json:"topic"`
	URL   string `json:"url,omitempty"`
}

// Research asks STORM for an article on topic, seeded with the source article URL.
// Inline citations in the returned article are linked to their references.
func (c *StormClient) Research(ctx context.Context, topic, articleURL string) (*Result, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("research topic is required")
	}

	payload, err := json.Marshal(researchRequest{Topic: topic, URL: articleURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode research request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/research", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create research request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("research service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode research response: %w", err)
	}
	if strings.TrimSpace(result.Article) == "" {
		return nil, fmt.Errorf("research service returned an empty article")
	}
	if result.Topic == "" {
		result.Topic = topic
	}
	result.Article = Finalize(result.Article, result.References)
	return &result, nil
}

// Finalize links bare [n] citations to their reference URLs and appends a References
// section. Articles without references are returned unchanged.
func Finalize(article string, refs []Reference) string {
	if len(refs) == 0 || strings.Contains(article, "## References") {
		return article
	}

	sorted := make([]Reference, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	urls := make(map[int]string, len(sorted))
	for _, ref := range sorted {
		urls[ref.Key] = ref.URL
	}

	var linked strings.Builder
	last := 0
	for _, m := range citationRe.FindAllStringSubmatchIndex(article, -1) {
		end := m[1]
		if end < len(article) && article[end] == '(' {
			continue
		}
		key, err := strconv.Atoi(article[m[2]:m[3]])
		if err != nil {
			continue
		}
		u, ok := urls[key]
		if !ok {
			continue
		}
		linked.WriteString(article[last:m[0]])
		fmt.Fprintf(&linked, "[%d](%s)", key, u)
		last = end
	}
	linked.WriteString(article[last:])

	var sb strings.Builder
	sb.WriteString(linked.String())
	sb.WriteString("\n\n## References\n\n")
	for i, ref := range sorted {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- %d [%s](%s)", ref.Key, ref.Title, ref.URL)
	}
	return sb.String()
}

var (
	citationRe     = regexp.MustCompile(`\[(\d+)\]`)
	referenceURLRe = regexp.MustCompile(`\[\d+\]\((https?://[^\)]+)\)`)
)

// ExtractReferenceURLs returns the URLs of linked citations such as [3](https://...)
// in order of first appearance, without duplicates.
func ExtractReferenceURLs(article string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, m := range referenceURLRe.FindAllStringSubmatch(article, -1) {
		if u := m[1]; !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}
