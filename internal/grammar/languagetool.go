// Package grammar checks generated text with LanguageTool and applies safe corrections.
package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aigency/internal/core"
)

// Issue is one grammar match. Offset and Length count UTF-16 code units, as LanguageTool does.
type Issue struct {
	Message      string   `json:"message"`
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Replacements []string `json:"replacements"`
	RuleID       string   `json:"rule_id"`
	Context      Context  `json:"context"`
}

// Context is the text surrounding an issue.
type Context struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Checker is the grammar-check collaborator.
type Checker interface {
	Check(ctx context.Context, text string, lang core.Language, disabledRules []string) ([]Issue, error)
}

// LanguageToolClient calls the LanguageTool HTTP API (/v2/check).
type LanguageToolClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewLanguageToolClient creates a client for a LanguageTool server such as http://localhost:8081.
func NewLanguageToolClient(endpoint string, timeout time.Duration) *LanguageToolClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &LanguageToolClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type checkResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Context struct {
			Text   string `json:"text"`
			Offset int    `json:"offset"`
		} `json:"context"`
		Rule struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check sends text to LanguageTool and returns the reported issues.
func (c *LanguageToolClient) Check(ctx context.Context, text string, lang core.Language, disabledRules []string) ([]Issue, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", lang.ToolCode())
	if len(disabledRules) > 0 {
		form.Set("disabledRules", strings.Join(disabledRules, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create grammar check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grammar check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("grammar check failed: status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode grammar check response: %w", err)
	}

	issues := make([]Issue, 0, len(decoded.Matches))
	for _, m := range decoded.Matches {
		issue := Issue{
			Message: m.Message,
			Offset:  m.Offset,
			Length:  m.Length,
			RuleID:  m.Rule.ID,
			Context: Context{Text: m.Context.Text, Offset: m.Context.Offset},
		}
		for _, r := range m.Replacements {
			issue.Replacements = append(issue.Replacements, r.Value)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
