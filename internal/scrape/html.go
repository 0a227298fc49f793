package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; aigency/1.0)"

// HTMLScraper downloads pages directly and extracts the main article text.
type HTMLScraper struct {
	userAgent  string
	httpClient *http.Client
}

// NewHTMLScraper creates a scraper that fetches pages over plain HTTP.
func NewHTMLScraper(userAgent string, timeout time.Duration) *HTMLScraper {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTMLScraper{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (h *HTMLScraper) Scrape(ctx context.Context, rawURL string) (string, error) {
	parsedURL, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := h.httpClient.Do(req)
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

	text, err := ExtractText(string(body), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", rawURL, err)
	}
	return text, nil
}

// ExtractText returns the readable text of an HTML page, prefixed by its title.
// Readability is tried first; pages it cannot handle fall back to selector-based extraction.
func ExtractText(rawHTML string, pageURL *url.URL) (string, error) {
	var title, text string

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		title = strings.TrimSpace(article.Title)
		text, err = blockText(article.Content)
		if err != nil {
			return "", err
		}
	}

	if text == "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}
		if title == "" {
			title = extractTitle(doc)
		}
		text = fallbackText(doc)
	}

	if text == "" {
		return "", fmt.Errorf("no article text found")
	}
	if title != "" && !strings.HasPrefix(text, title) {
		text = title + "\n" + text
	}
	return text, nil
}

var (
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
	spacesRe     = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre, td"

// blockText writes one line per block element of an HTML fragment.
func blockText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return collectBlocks(doc.Selection), nil
}

func collectBlocks(root *goquery.Selection) string {
	var sb strings.Builder
	root.Find(blockSelector).Each(func(_ int, item *goquery.Selection) {
		// nested blocks (li > p) are written by their innermost element
		if item.Find(blockSelector).Length() > 0 {
			return
		}
		line := strings.TrimSpace(spacesRe.ReplaceAllString(item.Text(), " "))
		if line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	})
	return strings.TrimSpace(blankLinesRe.ReplaceAllString(sb.String(), "\n"))
}

var mainContentSelectors = []string{
	"article", "main", "[role='main']",
	".main-content", ".entry-content", ".post-content", ".article-body", ".article-content",
	".content", "#content",
}

func fallbackText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .cookie-banner").Remove()

	for _, selector := range mainContentSelectors {
		if text := collectBlocks(doc.Find(selector).First()); text != "" {
			return text
		}
	}
	return collectBlocks(doc.Find("body"))
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content"); ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
