// Package scrape turns article URLs into plain text.
package scrape

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/google/uuid"

	"aigency/internal/config"
	"aigency/internal/core"
)

// Scraper fetches the readable text of a web page.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (string, error)
}

// New returns the scraper selected by the configuration.
func New(cfg config.Scraper) (Scraper, error) {
	timeout := config.Duration(cfg.Timeout, 30*time.Second)
	switch cfg.Provider {
	case "", "jina":
		return NewJinaScraper(cfg.JinaURL, cfg.JinaAPIKey, timeout), nil
	case "html":
		return NewHTMLScraper(cfg.UserAgent, timeout), nil
	default:
		return nil, fmt.Errorf("unknown scraper provider: %s", cfg.Provider)
	}
}

// ValidateURL checks that rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidURL, rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", core.ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %s", core.ErrInvalidURL, rawURL)
	}
	return parsed, nil
}

var urlRegex = regexp.MustCompile(`https?://[^\s)>;"]+`)

// ReadLinksFromFile collects unique http(s) URLs from a text file, one or more per line.
// Markdown list prefixes and other surrounding text are ignored.
func ReadLinksFromFile(filePath string) ([]core.Link, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open link file %s: %w", filePath, err)
	}
	defer file.Close()

	var links []core.Link
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		for _, textURL := range urlRegex.FindAllString(scanner.Text(), -1) {
			if _, err := ValidateURL(textURL); err != nil || seen[textURL] {
				continue
			}
			seen[textURL] = true
			links = append(links, core.Link{
				ID:        uuid.NewString(),
				URL:       textURL,
				DateAdded: time.Now().UTC(),
				Source:    "file:" + filePath,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading link file %s: %w", filePath, err)
	}
	return links, nil
}
