package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"aigency/internal/config"
	"aigency/internal/core"
	"aigency/internal/generator"
	"aigency/internal/logger"
	"aigency/internal/persistence"
	"aigency/internal/render"
	"aigency/internal/signature"
	"aigency/internal/tui"

	"github.com/spf13/cobra"
)

// NewTopicsCmd creates the topics command
func NewTopicsCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "topics [url]",
		Short: "Propose article topics for a source page",
		Long: `Scrape the source page and ask the model for distinct article topics.
Without a URL the built-in sample article is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			return runTopics(cmd.Context(), firstArg(args), count, lang)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of topics (default from config)")
	addLanguageFlag(cmd)
	return cmd
}

func runTopics(ctx context.Context, url string, count int, lang core.Language) error {
	gen, err := buildGenerator(true)
	if err != nil {
		return err
	}
	defer gen.Close()

	source, err := gen.ResolveSource(ctx, url)
	if err != nil {
		return err
	}
	topics, err := gen.GenerateTopics(ctx, signature.TopicsRequest{Source: source, Count: count, Language: lang})
	if err != nil {
		return err
	}

	for i, topic := range topics.Topics {
		fmt.Printf("%d. %s\n", i+1, topic)
	}
	return nil
}

// NewArticleCmd creates the article command
func NewArticleCmd() *cobra.Command {
	var (
		topic       string
		interactive bool
		augment     bool
		format      string
		outputDir   string
		stdout      bool
		save        bool
		noGrammar   bool
		headlines   int
		tags        int
	)

	cmd := &cobra.Command{
		Use:   "article [url]",
		Short: "Generate a complete article from a source page",
		Long: `Generate a complete article: headlines, perex, engaging text, body, tags and
an optional chart. Without --topic the first proposed topic is used, or the user
picks one with --interactive.

Examples:
  aigency article https://example.com/news
  aigency article https://example.com/news --interactive --augment
  aigency article --format html --output-dir out
  aigency article https://example.com/news --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			req := generator.ArticleRequest{
				URL:            firstArg(args),
				Topic:          topic,
				Augment:        augment,
				HeadlinesCount: headlines,
				TagsCount:      tags,
				Language:       lang,
			}
			return runArticle(cmd.Context(), req, articleOutput{
				interactive: interactive,
				format:      format,
				outputDir:   outputDir,
				stdout:      stdout,
				save:        save,
				noGrammar:   noGrammar,
			})
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Article topic (default: first proposed topic)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the topic interactively")
	cmd.Flags().BoolVar(&augment, "augment", false, "Augment the article with a research article")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: markdown, html, json (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default from config)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the article instead of writing a file")
	cmd.Flags().BoolVar(&save, "save", false, "Save the article to the database")
	cmd.Flags().BoolVar(&noGrammar, "no-grammar", false, "Skip grammar correction")
	cmd.Flags().IntVar(&headlines, "headlines", 0, "Number of headline candidates (default from config)")
	cmd.Flags().IntVar(&tags, "tags", 0, "Number of tags (default from config)")
	addLanguageFlag(cmd)

	return cmd
}

type articleOutput struct {
	interactive bool
	format      string
	outputDir   string
	stdout      bool
	save        bool
	noGrammar   bool
}

func runArticle(ctx context.Context, req generator.ArticleRequest, out articleOutput) error {
	log := logger.Get()

	gen, err := buildGenerator(out.noGrammar)
	if err != nil {
		return err
	}
	defer gen.Close()

	if out.interactive && req.Topic == "" {
		source, err := gen.ResolveSource(ctx, req.URL)
		if err != nil {
			return err
		}
		topics, err := gen.GenerateTopics(ctx, signature.TopicsRequest{Source: source, Language: req.Language})
		if err != nil {
			return err
		}
		req.Topic, err = tui.PickTopic(string(source), topics.Topics)
		if errors.Is(err, tui.ErrCancelled) {
			fmt.Println("Cancelled")
			return nil
		}
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "Generating article...")
	result, err := gen.GenerateArticle(ctx, req)
	if err != nil {
		if stage, ok := core.StageOf(err); ok {
			log.Error("Article generation failed", "stage", stage, "error", err.Error())
		}
		return err
	}

	if err := writeResult(result, out); err != nil {
		return err
	}

	if out.save {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.Articles().Save(ctx, persistence.BuildArticleData(result))
		if err != nil {
			return fmt.Errorf("failed to save article: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved article with id %d\n", id)
	}
	return nil
}

func writeResult(result *core.ArticleResult, out articleOutput) error {
	cfg := config.Get().Output
	format := out.format
	if format == "" {
		format = cfg.Format
	}
	outputDir := out.outputDir
	if outputDir == "" {
		outputDir = cfg.Directory
	}

	content, err := renderResult(result, format)
	if err != nil {
		return err
	}
	if out.stdout {
		fmt.Println(content)
		return nil
	}

	path, err := render.WriteArticle(content, outputDir, render.Filename(result, format))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Article written to %s\n", path)
	return nil
}

func renderResult(result *core.ArticleResult, format string) (string, error) {
	switch format {
	case "", render.FormatMarkdown:
		return render.Markdown(result), nil
	case render.FormatHTML:
		return render.HTML(result), nil
	case render.FormatJSON:
		return render.JSON(result)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
