package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aigency/internal/batch"
	"aigency/internal/config"

	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	var (
		output  string
		augment bool
	)

	cmd := &cobra.Command{
		Use:   "batch <links-file>",
		Short: "Generate articles for a list of links into a CSV file",
		Long: `Generate one article per link and write a semicolon separated CSV with the
columns News Site, Headline, Perex, Article and Tags.

The input is either a .csv file with "site;url" rows or a text/markdown file
of links. Failed links are retried, then skipped.

Examples:
  aigency batch sites.csv --output articles.csv
  aigency batch links.md --augment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), args[0], output, augment)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "articles.csv", "Output CSV file")
	cmd.Flags().BoolVar(&augment, "augment", false, "Augment every article with a research article")
	return cmd
}

func runBatch(ctx context.Context, input, output string, augment bool) error {
	jobs, err := batch.ReadJobs(input)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no links found in %s", input)
	}

	gen, err := buildGenerator(false)
	if err != nil {
		return err
	}
	defer gen.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get().Batch
	runner := batch.NewRunner(gen, batch.Options{
		Retries:    cfg.Retries,
		RetryDelay: config.Duration(cfg.RetryDelay, batch.DefaultRetryDelay),
		Rate:       cfg.Rate,
		Augment:    augment,
	})

	summary, err := runner.Run(ctx, jobs, f)
	fmt.Fprintf(os.Stderr, "Processed %d of %d links (%d failed) in %s, output: %s\n",
		summary.Processed, len(jobs), summary.Failed, summary.Duration.Round(time.Second), output)
	return err
}
