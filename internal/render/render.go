// Package render formats generated articles as Markdown, HTML or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"aigency/internal/core"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Supported output formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Markdown renders an article as a Markdown document. The engaging text is shown
// before the article as a quote because it is not part of the body.
func Markdown(result *core.ArticleResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", result.Headline)
	if result.EngagingText != "" {
		fmt.Fprintf(&b, "> %s\n\n", result.EngagingText)
	}
	if result.Perex != "" {
		fmt.Fprintf(&b, "**%s**\n\n", result.Perex)
	}
	for _, p := range core.ArticleBody(result.Body).Paragraphs() {
		b.WriteString(strings.TrimSpace(p))
		b.WriteString("\n\n")
	}

	if g := result.Graph; g != nil && g.ShouldGenerate && g.Data != nil {
		writeGraph(&b, g)
	}

	if len(result.Tags) > 0 {
		b.WriteString(strings.Join(result.Tags, " "))
		b.WriteString("\n\n")
	}

	if len(result.References) > 0 {
		b.WriteString("## References\n\n")
		for i, ref := range result.References {
			fmt.Fprintf(&b, "%d. <%s>\n", i+1, ref)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*Topic: %s · Source: <%s>*\n", result.Topic, result.URL)
	if len(result.Headlines) > 1 {
		b.WriteString("\n*Alternative headlines:*\n\n")
		for _, h := range result.Headlines[1:] {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	return b.String()
}

// writeGraph renders chart data as a Markdown table.
func writeGraph(b *strings.Builder, g *core.GraphSpec) {
	title := g.Title
	if title == "" {
		title = "Chart"
	}
	fmt.Fprintf(b, "### %s (%s)\n\n", title, g.Type)

	xLabel, yLabel := g.AxisLabels.X, g.AxisLabels.Y
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", xLabel, yLabel)

	switch g.Type {
	case core.GraphScatter:
		for i := range g.Data.YVals {
			fmt.Fprintf(b, "| %s | %s |\n", number(g.Data.XVals[i]), number(g.Data.YVals[i]))
		}
	case core.GraphHistogram:
		for i, v := range g.Data.Values {
			fmt.Fprintf(b, "| %d | %s |\n", i+1, number(v))
		}
	default:
		for i, v := range g.Data.Values {
			fmt.Fprintf(b, "| %s | %s |\n", g.Data.Labels[i], number(v))
		}
	}
	b.WriteString("\n")
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// HTML renders an article as an HTML fragment.
func HTML(result *core.ArticleResult) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})

	return string(markdown.ToHTML([]byte(Markdown(result)), p, renderer))
}

// JSON renders an article as indented JSON.
func JSON(result *core.ArticleResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode article: %w", err)
	}
	return string(data), nil
}

// WriteArticle writes a rendered article to outputDir and returns the file path.
func WriteArticle(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "articles"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write article file %s: %w", filePath, err)
	}
	return filePath, nil
}

// Filename returns the output file name for an article in format.
func Filename(result *core.ArticleResult, format string) string {
	ext := "md"
	switch format {
	case FormatHTML:
		ext = "html"
	case FormatJSON:
		ext = "json"
	}
	id := result.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("article_%s_%s.%s", result.GeneratedAt.Format("2006-01-02"), id, ext)
}
