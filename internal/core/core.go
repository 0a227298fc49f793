package core

import (
	"encoding/json"
	"strings"
	"time"
)

// Link represents a source URL queued for generation.
type Link struct {
	ID        string    `json:"id"`         // Unique identifier for the link
	URL       string    `json:"url"`        // The URL string
	DateAdded time.Time `json:"date_added"` // Timestamp when the link was added
	Source    string    `json:"source"`     // Source of the link (e.g., "file", "cli")
}

// SourceText is raw scraped or literal article text. It is never mutated once produced.
type SourceText string

// TopicSet is the ordered list of topics derived from a source text.
type TopicSet struct {
	Topics []string `json:"topics"`
}

// HeadlineSet holds candidate headlines for one topic.
type HeadlineSet struct {
	Headlines []string `json:"headlines"`
}

// Perex is the short teaser shown under the headline.
type Perex string

// EngagingText is a hook shown outside the article body.
type EngagingText string

// ArticleBody is the multi-paragraph article text. Paragraphs are separated by a single newline.
type ArticleBody string

// ParagraphSeparator splits paragraphs of an ArticleBody.
const ParagraphSeparator = "\n"

// Paragraphs returns the non-empty paragraphs of the body.
func (b ArticleBody) Paragraphs() []string {
	var paragraphs []string
	for _, p := range strings.Split(string(b), ParagraphSeparator) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// TagSet holds the article tags.
type TagSet struct {
	Tags []string `json:"tags"`
}

// TagMarker prefixes every generated tag.
const TagMarker = "#"

// GraphType enumerates supported chart types.
type GraphType string

const (
	GraphPie       GraphType = "pie"
	GraphLine      GraphType = "line"
	GraphBar       GraphType = "bar"
	GraphHistogram GraphType = "histogram"
	GraphScatter   GraphType = "scatter"
)

// GraphTypes lists chart types in the order offered to the model.
var GraphTypes = []GraphType{GraphPie, GraphLine, GraphBar, GraphHistogram, GraphScatter}

// Valid reports whether t is one of the supported chart types.
func (t GraphType) Valid() bool {
	for _, known := range GraphTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AxisLabels names the chart axes. Pie charts leave both empty.
type AxisLabels struct {
	X string `json:"x_axis,omitempty"`
	Y string `json:"y_axis,omitempty"`
}

// GraphData is the chart payload. Scatter charts use XVals/YVals, every other type Labels/Values.
// A nil value marks a missing data point.
type GraphData struct {
	Labels []string   `json:"labels,omitempty"`
	Values []*float64 `json:"values,omitempty"`
	XVals  []*float64 `json:"x_vals,omitempty"`
	YVals  []*float64 `json:"y_vals,omitempty"`
}

// GraphSpec describes an optional chart derived from the article's numbers.
type GraphSpec struct {
	ShouldGenerate bool       `json:"gen_graph"`
	Type           GraphType  `json:"graph_type,omitempty"`
	Title          string     `json:"graph_title,omitempty"`
	AxisLabels     AxisLabels `json:"graph_axis_labels"`
	Data           *GraphData `json:"graph_data"`
}

// RawGraphSpec is chart output as returned by the model, before cleaning.
// Data arrays may arrive as JSON arrays or as strings encoding a list.
type RawGraphSpec struct {
	GenGraph   bool                       `json:"gen_graph"`
	GraphType  string                     `json:"graph_type"`
	GraphTitle string                     `json:"graph_title"`
	AxisLabels AxisLabels                 `json:"graph_axis_labels"`
	GraphData  map[string]json.RawMessage `json:"graph_data"`
}

// ArticleResult is the assembled article handed to persistence.
type ArticleResult struct {
	ID           string     `json:"id"`            // Unique identifier for the generated article
	URL          string     `json:"url"`           // Source URL
	Topic        string     `json:"topic"`         // Selected topic
	Headline     string     `json:"headline"`      // Chosen headline
	Headlines    []string   `json:"headlines"`     // All candidate headlines
	Perex        string     `json:"perex"`         // Teaser
	EngagingText string     `json:"engaging_text"` // Hook, not part of the body
	Body         string     `json:"article"`       // Article body
	Tags         []string   `json:"tags"`          // Cleaned tags
	Graph        *GraphSpec `json:"graph,omitempty"`
	Language     Language   `json:"language"`
	Augmented    bool       `json:"augmented"`    // Whether research text was threaded in
	References   []string   `json:"references"`   // Reference URLs from the research article
	GeneratedAt  time.Time  `json:"generated_at"` // Assembly timestamp
}

// CacheStats represents statistics about a cache store.
type CacheStats struct {
	Backend     string    `json:"backend"`      // Backend name
	EntryCount  int       `json:"entry_count"`  // Number of live entries
	CacheSize   int64     `json:"cache_size"`   // Total size in bytes, when known
	LastUpdated time.Time `json:"last_updated"` // Last write time, when known
}
