package signature

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"aigency/internal/core"
)

// Length bands in characters (runes).
const (
	HeadlineMinLen     = 70
	HeadlineMaxLen     = 110
	PerexMinLen        = 140
	PerexMaxLen        = 160
	EngagingTextMaxLen = 240
	MinBodyParagraphs  = 3
)

var (
	numberMarkerRe  = regexp.MustCompile(`^\s*(\d+)[.)]\s+`)
	bulletRe        = regexp.MustCompile(`^\s*[-*•–·]+\s+`)
	blankLinesRe    = regexp.MustCompile(`\n\s*\n+`)
	codeFenceRe     = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*(.*?)\\s*```\\s*$")
	innerNewlinesRe = regexp.MustCompile(`\s*\n\s*`)
)

// HeadlineInBand reports whether h has an allowed headline length.
func HeadlineInBand(h string) bool {
	n := utf8.RuneCountInString(h)
	return n >= HeadlineMinLen && n <= HeadlineMaxLen
}

// PerexInBand reports whether p has the target perex length.
func PerexInBand(p string) bool {
	n := utf8.RuneCountInString(p)
	return n >= PerexMinLen && n <= PerexMaxLen
}

// DecodeTopics parses a topics response.
func DecodeTopics(raw string, count int) (core.TopicSet, error) {
	var resp struct {
		Topics []string `json:"topics"`
	}
	if err := unmarshal(raw, &resp); err != nil {
		return core.TopicSet{}, err
	}
	topics := cleanList(resp.Topics)
	if len(topics) == 0 {
		return core.TopicSet{}, fmt.Errorf("response contains no topics")
	}
	return core.TopicSet{Topics: limit(topics, count)}, nil
}

// DecodeHeadlines parses a headlines response. Headlines outside the length band are dropped.
func DecodeHeadlines(raw string, count int) (core.HeadlineSet, error) {
	var resp struct {
		Headlines []string `json:"headlines"`
	}
	if err := unmarshal(raw, &resp); err != nil {
		return core.HeadlineSet{}, err
	}

	var valid []string
	var rejected int
	for _, h := range cleanList(resp.Headlines) {
		h = innerNewlinesRe.ReplaceAllString(h, " ")
		if !HeadlineInBand(h) {
			rejected++
			continue
		}
		valid = append(valid, h)
	}
	if len(valid) == 0 {
		return core.HeadlineSet{}, fmt.Errorf("none of %d headlines is %d-%d characters long", rejected, HeadlineMinLen, HeadlineMaxLen)
	}
	return core.HeadlineSet{Headlines: limit(valid, count)}, nil
}

// DecodePerex parses a perex response.
func DecodePerex(raw string) (core.Perex, error) {
	var resp struct {
		Perex string `json:"perex"`
	}
	if err := unmarshal(raw, &resp); err != nil {
		return "", err
	}
	perex := strings.TrimSpace(innerNewlinesRe.ReplaceAllString(resp.Perex, " "))
	if perex == "" {
		return "", fmt.Errorf("response contains no perex")
	}
	return core.Perex(perex), nil
}

// DecodeEngagingText parses an engaging text response, cutting it at a word boundary
// when it exceeds the maximum length.
func DecodeEngagingText(raw string) (core.EngagingText, error) {
	var resp struct {
		EngagingText string `json:"engaging_text"`
	}
	if err := unmarshal(raw, &resp); err != nil {
		return "", err
	}
	text := strings.TrimSpace(innerNewlinesRe.ReplaceAllString(resp.EngagingText, " "))
	if text == "" {
		return "", fmt.Errorf("response contains no engaging text")
	}
	return FitEngagingText(text), nil
}

// FitEngagingText shortens text to EngagingTextMaxLen runes, cutting at a word boundary.
func FitEngagingText(text string) core.EngagingText {
	return core.EngagingText(truncateWords(text, EngagingTextMaxLen))
}

// DecodeBody parses an article body response and normalizes paragraph separators.
func DecodeBody(raw string) (core.ArticleBody, error) {
	var resp struct {
		Article string `json:"article"`
	}
	if err := unmarshal(raw, &resp); err != nil {
		return "", err
	}
	body := strings.ReplaceAll(resp.Article, "\r\n", "\n")
	body = strings.ReplaceAll(body, `\n`, "\n")
	body = strings.TrimSpace(blankLinesRe.ReplaceAllString(body, "\n"))

	lines := strings.Split(body, core.ParagraphSeparator)
	for i, line := range lines {
		lines[i] = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
	}
	result := core.ArticleBody(strings.Join(lines, core.ParagraphSeparator))

	if n := len(result.Paragraphs()); n < MinBodyParagraphs {
		return "", fmt.Errorf("article has %d paragraphs, need at least %d", n, MinBodyParagraphs)
	}
	return result, nil
}

// DecodeTags parses a tags response. Tag repair happens in the cleaning step.
func DecodeTags(raw string, count int) (core.TagSet, error) {
	var resp struct {
		Tags []string `json:"tags"`
	}
	if err := unmarshal(raw, &resp); err != nil {
		return core.TagSet{}, err
	}
	var tags []string
	for _, tag := range resp.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return core.TagSet{}, fmt.Errorf("response contains no tags")
	}
	return core.TagSet{Tags: limit(tags, count)}, nil
}

// DecodeGraph parses a chart response without validating its data.
func DecodeGraph(raw string) (core.RawGraphSpec, error) {
	var spec core.RawGraphSpec
	if err := unmarshal(raw, &spec); err != nil {
		return core.RawGraphSpec{}, err
	}
	return spec, nil
}

func unmarshal(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

// cleanList strips bullet glyphs from every item. Leading numbers are list markers only
// when the whole list counts 1..n; otherwise they belong to the text ("1. mája ...").
func cleanList(items []string) []string {
	numbered := len(items) > 1
	for i, item := range items {
		m := numberMarkerRe.FindStringSubmatch(bulletRe.ReplaceAllString(item, ""))
		if m == nil || m[1] != strconv.Itoa(i+1) {
			numbered = false
			break
		}
	}

	var out []string
	for _, item := range items {
		item = bulletRe.ReplaceAllString(item, "")
		if numbered {
			item = numberMarkerRe.ReplaceAllString(item, "")
		}
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func limit(items []string, count int) []string {
	if count > 0 && len(items) > count {
		return items[:count]
	}
	return items
}

func truncateWords(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:")
}
