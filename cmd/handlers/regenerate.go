package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"aigency/internal/core"
	"aigency/internal/signature"

	"github.com/spf13/cobra"
)

// Fields that can be regenerated
const (
	fieldHeadlines    = "headlines"
	fieldPerex        = "perex"
	fieldEngagingText = "engaging-text"
	fieldBody         = "body"
	fieldTags         = "tags"
)

var regenerableFields = []string{fieldHeadlines, fieldPerex, fieldEngagingText, fieldBody, fieldTags}

type regenerateOptions struct {
	url          string
	topic        string
	headline     string
	article      string
	prior        []string
	researchFile string
	count        int
	lang         core.Language
}

// NewRegenerateCmd creates the regenerate command
func NewRegenerateCmd() *cobra.Command {
	var opts regenerateOptions

	cmd := &cobra.Command{
		Use:   "regenerate <field>",
		Short: "Regenerate one field of an article away from its previous value",
		Long: `Regenerate headlines, perex, engaging-text, body or tags. The previous outputs
are passed with --prior and the model is asked for something different.

Examples:
  aigency regenerate headlines --topic "Ceny palív" --prior "Old headline"
  aigency regenerate perex --topic "Ceny palív" --headline "..." --prior "Old perex"
  aigency regenerate tags --topic "..." --headline "..." --article-file body.txt --prior "#OLD"`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: regenerableFields,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			opts.lang = lang
			if path, _ := cmd.Flags().GetString("article-file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read article file: %w", err)
				}
				opts.article = string(data)
			}
			return runRegenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "Source URL (default: built-in sample article)")
	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "Article topic")
	cmd.Flags().StringVar(&opts.headline, "headline", "", "Chosen headline")
	cmd.Flags().String("article-file", "", "File with the article body (required for tags)")
	cmd.Flags().StringArrayVar(&opts.prior, "prior", nil, "Previous output to move away from (repeatable)")
	cmd.Flags().StringVar(&opts.researchFile, "research-file", "", "File with a research article to augment with")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "Number of headlines or tags")
	addLanguageFlag(cmd)
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("prior")

	return cmd
}

func runRegenerate(ctx context.Context, field string, opts regenerateOptions) error {
	if needsHeadline(field) && opts.headline == "" {
		return fmt.Errorf("--headline is required for %s", field)
	}
	if field == fieldTags && strings.TrimSpace(opts.article) == "" {
		return fmt.Errorf("--article-file is required for tags")
	}
	if !isListField(field) && len(opts.prior) != 1 {
		return fmt.Errorf("%s takes exactly one --prior value", field)
	}

	augmentation := ""
	if opts.researchFile != "" {
		data, err := os.ReadFile(opts.researchFile)
		if err != nil {
			return fmt.Errorf("failed to read research file: %w", err)
		}
		augmentation = string(data)
	}

	gen, err := buildGenerator(false)
	if err != nil {
		return err
	}
	defer gen.Close()

	source, err := gen.ResolveSource(ctx, opts.url)
	if err != nil {
		return err
	}
	mode := signature.Augmented(augmentation)
	if augmentation == "" {
		mode = signature.Fresh()
	}
	content := signature.ContentRequest{
		Source:   source,
		Topic:    opts.topic,
		Headline: opts.headline,
		Language: opts.lang,
		Mode:     mode,
	}

	switch field {
	case fieldHeadlines:
		set, err := gen.RegenerateHeadlines(ctx, signature.HeadlinesRequest{
			Source: source, Topic: opts.topic, Count: opts.count, Language: opts.lang, Mode: mode,
		}, opts.prior)
		if err != nil {
			return err
		}
		printList(set.Headlines)
	case fieldPerex:
		perex, err := gen.RegeneratePerex(ctx, content, opts.prior[0])
		if err != nil {
			return err
		}
		fmt.Println(perex)
	case fieldEngagingText:
		text, err := gen.RegenerateEngagingText(ctx, content, opts.prior[0])
		if err != nil {
			return err
		}
		fmt.Println(text)
	case fieldBody:
		body, err := gen.RegenerateArticleBody(ctx, content, opts.prior[0])
		if err != nil {
			return err
		}
		fmt.Println(body)
	case fieldTags:
		set, err := gen.RegenerateTags(ctx, signature.TagsRequest{
			Source: source, Topic: opts.topic, Headline: opts.headline, Body: opts.article,
			Count: opts.count, Language: opts.lang, Mode: mode,
		}, opts.prior)
		if err != nil {
			return err
		}
		printList(set.Tags)
	default:
		return fmt.Errorf("unknown field %q, expected one of %s", field, strings.Join(regenerableFields, ", "))
	}
	return nil
}

func needsHeadline(field string) bool {
	return field != fieldHeadlines
}

func isListField(field string) bool {
	return field == fieldHeadlines || field == fieldTags
}

func printList(items []string) {
	for i, item := range items {
		fmt.Printf("%d. %s\n", i+1, item)
	}
}

// NewGraphCmd creates the graph command
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [url]",
		Short: "Extract a chart definition from a source page",
		Long: `Ask the model whether the source contains data worth charting and print the
cleaned chart definition as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			return runGraph(cmd.Context(), firstArg(args), lang)
		},
	}
	addLanguageFlag(cmd)
	return cmd
}

func runGraph(ctx context.Context, url string, lang core.Language) error {
	gen, err := buildGenerator(true)
	if err != nil {
		return err
	}
	defer gen.Close()

	source, err := gen.ResolveSource(ctx, url)
	if err != nil {
		return err
	}
	spec, err := gen.GenerateGraph(ctx, signature.GraphRequest{Source: source, Language: lang})
	if err != nil {
		return err
	}
	if !spec.ShouldGenerate {
		fmt.Fprintln(os.Stderr, "No chart suggested for this source")
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
