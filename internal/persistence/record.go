package persistence

import (
	"aigency/internal/core"
)

// ArticleData is the persisted form of a generated article. Its JSON shape is the
// payload accepted by the save endpoint.
type ArticleData struct {
	UUID         string            `json:"uuid,omitempty"`
	Language     string            `json:"language,omitempty"`
	URL          URLField          `json:"url"`
	Heading      HeadingField      `json:"heading"`
	Topic        TopicField        `json:"topic"`
	Perex        PerexField        `json:"perex"`
	Body         BodyField         `json:"body"`
	EngagingText EngagingTextField `json:"engaging_text"`
	Tags         []TagField        `json:"tags"`
	GraphData    *GraphRecord      `json:"graph_data,omitempty"`
}

type URLField struct {
	URL string `json:"url"`
}

type HeadingField struct {
	HeadingContent string `json:"heading_content"`
}

type TopicField struct {
	TopicContent string `json:"topic_content"`
}

type PerexField struct {
	PerexContent string `json:"perex_content"`
}

type BodyField struct {
	BodyContent string `json:"body_content"`
}

type EngagingTextField struct {
	EngagingTextContent string `json:"engaging_text_content"`
}

type TagField struct {
	TagsContent string `json:"tags_content"`
}

// GraphRecord is a stored chart. Scatter charts store x values as labels and y values
// as values, so GraphLabels holds either strings or numbers.
type GraphRecord struct {
	GraphType   core.GraphType `json:"graph_type"`
	GraphLabels []any          `json:"graph_labels"`
	GraphValues []*float64     `json:"graph_values"`
}

// BuildArticleData converts a generated article into its persisted form. The chosen
// headline is stored as the heading, falling back to the first candidate. The chart is
// included only when it should be drawn.
func BuildArticleData(result *core.ArticleResult) ArticleData {
	heading := result.Headline
	if heading == "" && len(result.Headlines) > 0 {
		heading = result.Headlines[0]
	}

	data := ArticleData{
		UUID:         result.ID,
		Language:     string(result.Language),
		URL:          URLField{URL: result.URL},
		Heading:      HeadingField{HeadingContent: heading},
		Topic:        TopicField{TopicContent: result.Topic},
		Perex:        PerexField{PerexContent: result.Perex},
		Body:         BodyField{BodyContent: result.Body},
		EngagingText: EngagingTextField{EngagingTextContent: result.EngagingText},
		Tags:         make([]TagField, 0, len(result.Tags)),
	}
	for _, tag := range result.Tags {
		data.Tags = append(data.Tags, TagField{TagsContent: tag})
	}

	if g := result.Graph; g != nil && g.ShouldGenerate && g.Data != nil {
		record := &GraphRecord{GraphType: g.Type}
		if g.Type == core.GraphScatter {
			for _, x := range g.Data.XVals {
				record.GraphLabels = append(record.GraphLabels, x)
			}
			record.GraphValues = g.Data.YVals
		} else {
			for _, label := range g.Data.Labels {
				record.GraphLabels = append(record.GraphLabels, label)
			}
			record.GraphValues = g.Data.Values
		}
		data.GraphData = record
	}
	return data
}

// TagContents returns the tag strings in order.
func (d ArticleData) TagContents() []string {
	tags := make([]string, len(d.Tags))
	for i, t := range d.Tags {
		tags[i] = t.TagsContent
	}
	return tags
}
