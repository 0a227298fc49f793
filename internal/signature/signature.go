// Package signature declares the request and response contract of every generation
// stage: the instructions sent to the model, the JSON schema it must answer with and
// the decoding of that answer into domain values.
package signature

import (
	"context"
	"fmt"
	"strings"

	"aigency/internal/core"
	"aigency/internal/llm"

	"google.golang.org/genai"
)

// LLMClient is the completion collaborator. llm.Client satisfies it.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// Kind identifies a content kind.
type Kind string

const (
	KindTopics       Kind = "topics"
	KindHeadlines    Kind = "headlines"
	KindPerex        Kind = "perex"
	KindEngagingText Kind = "engaging_text"
	KindBody         Kind = "body"
	KindTags         Kind = "tags"
	KindGraph        Kind = "graph"
)

func (k Kind) supportsAugmentation() bool {
	switch k {
	case KindPerex, KindEngagingText, KindBody, KindGraph:
		return true
	}
	return false
}

func (k Kind) supportsRegeneration() bool {
	switch k {
	case KindHeadlines, KindPerex, KindEngagingText, KindBody, KindTags:
		return true
	}
	return false
}

// Stage maps the kind to its pipeline stage.
func (k Kind) Stage() core.Stage {
	switch k {
	case KindTopics:
		return core.StageTopics
	case KindHeadlines:
		return core.StageHeadlines
	case KindPerex:
		return core.StagePerex
	case KindEngagingText:
		return core.StageEngagingText
	case KindBody:
		return core.StageBody
	case KindTags:
		return core.StageTags
	default:
		return core.StageGraph
	}
}

// Field is one named input of a signature.
type Field struct {
	Name  string
	Value string
}

// Signature is a fully resolved generation request for one stage.
type Signature struct {
	Kind         Kind
	Variant      Variant
	Instructions string
	Inputs       []Field
	Schema       *genai.Schema
}

// Prompt renders the signature as a single prompt.
func (s Signature) Prompt() string {
	var b strings.Builder
	b.WriteString(s.Instructions)
	b.WriteString("\n\nInputs:\n")
	for _, f := range s.Inputs {
		fmt.Fprintf(&b, "\n### %s\n%s\n", f.Name, f.Value)
	}
	b.WriteString("\nAnswer with JSON matching the response schema and nothing else.")
	return b.String()
}

// Options returns generation options carrying the response schema.
func (s Signature) Options(model string, temperature float32) llm.TextGenerationOptions {
	return llm.TextGenerationOptions{
		Model:          model,
		Temperature:    temperature,
		ResponseSchema: s.Schema,
	}
}

// TopicsRequest asks for the topics of a source text.
type TopicsRequest struct {
	Source   core.SourceText
	Count    int
	Language core.Language
}

// HeadlinesRequest asks for headline candidates.
type HeadlinesRequest struct {
	Source   core.SourceText
	Topic    string
	Count    int
	Language core.Language
	Mode     Mode
}

// ContentRequest asks for a perex, an engaging text or an article body.
type ContentRequest struct {
	Source   core.SourceText
	Topic    string
	Headline string
	Language core.Language
	Mode     Mode
}

// TagsRequest asks for tags of a generated article.
type TagsRequest struct {
	Source   core.SourceText
	Topic    string
	Headline string
	Body     string
	Count    int
	Language core.Language
	Mode     Mode
}

// GraphRequest asks for a chart description.
type GraphRequest struct {
	Source   core.SourceText
	Language core.Language
	Mode     Mode
}

// Topics builds the topics signature.
func Topics(req TopicsRequest) (Signature, error) {
	if strings.TrimSpace(string(req.Source)) == "" {
		return Signature{}, fmt.Errorf("source text is empty")
	}
	return Signature{
		Kind:         KindTopics,
		Variant:      VariantGenerate,
		Instructions: topicsGuidelines,
		Inputs: []Field{
			{"topic_count", fmt.Sprint(positive(req.Count, 5))},
			{"language", string(req.Language)},
			{"source_text", string(req.Source)},
		},
		Schema: listSchema("topics", "Topics covered by the article"),
	}, nil
}

// Headlines builds the headlines signature.
func Headlines(req HeadlinesRequest) (Signature, error) {
	variant, err := SelectVariant(KindHeadlines, req.Mode)
	if err != nil {
		return Signature{}, err
	}
	inputs := []Field{
		{"headline_count", fmt.Sprint(positive(req.Count, 3))},
		{"language", string(req.Language)},
		{"selected_topic", req.Topic},
		{"source_text", string(req.Source)},
	}
	return Signature{
		Kind:         KindHeadlines,
		Variant:      variant,
		Instructions: withVariant(headlineGuidelines, variant),
		Inputs:       withMode(inputs, req.Mode),
		Schema:       listSchema("headlines", "Headlines of 70 to 110 characters"),
	}, nil
}

// Perex builds the perex signature.
func Perex(req ContentRequest) (Signature, error) {
	return content(KindPerex, perexGuidelines, stringSchema("perex", "Teaser of 140 to 160 characters"), req)
}

// EngagingText builds the engaging text signature.
func EngagingText(req ContentRequest) (Signature, error) {
	return content(KindEngagingText, engagingTextGuidelines, stringSchema("engaging_text", "Hook of at most 240 characters"), req)
}

// Body builds the article body signature.
func Body(req ContentRequest) (Signature, error) {
	return content(KindBody, bodyGuidelines, stringSchema("article", "Article body with paragraphs separated by a newline"), req)
}

func content(kind Kind, guidelines string, schema *genai.Schema, req ContentRequest) (Signature, error) {
	variant, err := SelectVariant(kind, req.Mode)
	if err != nil {
		return Signature{}, err
	}
	inputs := []Field{
		{"language", string(req.Language)},
		{"selected_topic", req.Topic},
		{"current_headline", req.Headline},
		{"source_text", string(req.Source)},
	}
	return Signature{
		Kind:         kind,
		Variant:      variant,
		Instructions: withVariant(guidelines, variant),
		Inputs:       withMode(inputs, req.Mode),
		Schema:       schema,
	}, nil
}

// Tags builds the tags signature.
func Tags(req TagsRequest) (Signature, error) {
	variant, err := SelectVariant(KindTags, req.Mode)
	if err != nil {
		return Signature{}, err
	}
	inputs := []Field{
		{"tag_count", fmt.Sprint(positive(req.Count, 4))},
		{"language", string(req.Language)},
		{"selected_topic", req.Topic},
		{"current_headline", req.Headline},
		{"current_article", req.Body},
		{"source_text", string(req.Source)},
	}
	return Signature{
		Kind:         KindTags,
		Variant:      variant,
		Instructions: withVariant(tagsGuidelines, variant),
		Inputs:       withMode(inputs, req.Mode),
		Schema:       listSchema("tags", "Tags starting with # in capital letters"),
	}, nil
}

// Graph builds the chart signature.
func Graph(req GraphRequest) (Signature, error) {
	variant, err := SelectVariant(KindGraph, req.Mode)
	if err != nil {
		return Signature{}, err
	}
	inputs := []Field{
		{"language", string(req.Language)},
		{"source_text", string(req.Source)},
	}
	return Signature{
		Kind:         KindGraph,
		Variant:      variant,
		Instructions: withVariant(graphGuidelines, variant),
		Inputs:       withMode(inputs, req.Mode),
		Schema:       graphSchema(),
	}, nil
}

func withVariant(guidelines string, variant Variant) string {
	switch variant {
	case VariantRegenerate:
		return guidelines + "\n\n" + regenerateInstruction
	case VariantAugmentedGenerate:
		return guidelines + "\n\n" + augmentedInstruction
	}
	return guidelines
}

func withMode(inputs []Field, m Mode) []Field {
	if m.IsRegeneration() {
		inputs = append(inputs, Field{"prior_output", "- " + strings.Join(m.Prior(), "\n- ")})
	}
	if m.IsAugmented() {
		inputs = append(inputs, Field{"research_article", m.Augmentation()})
	}
	return inputs
}

func positive(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
