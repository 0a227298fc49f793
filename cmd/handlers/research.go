package handlers

import (
	"context"
	"fmt"

	"aigency/internal/config"
	"aigency/internal/research"

	"github.com/spf13/cobra"
)

// NewResearchCmd creates the research command
func NewResearchCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "research <topic>",
		Short: "Request a background research article for a topic",
		Long: `Ask the STORM research service for a background article on a topic and print it
with its references. The article can be passed to 'aigency regenerate --research-file'.

Examples:
  aigency research "Zdražovanie pohonných látok"
  aigency research "Ceny palív" --url https://example.com/news`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearch(cmd.Context(), args[0], url)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "Source URL the research relates to")
	return cmd
}

func runResearch(ctx context.Context, topic, url string) error {
	cfg := config.Get().Research
	if cfg.Endpoint == "" {
		return fmt.Errorf("research endpoint not configured (research.endpoint)")
	}
	client := research.NewStormClient(cfg.Endpoint, config.Duration(cfg.Timeout, research.DefaultTimeout))

	result, err := client.Research(ctx, topic, url)
	if err != nil {
		return err
	}

	fmt.Println(result.Article)
	if urls := research.ExtractReferenceURLs(result.Article); len(urls) > 0 {
		fmt.Println()
		fmt.Println("References:")
		printList(urls)
	}
	return nil
}
