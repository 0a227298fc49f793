package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"aigency/internal/config"
	"aigency/internal/core"
	"aigency/internal/grammar"
	"aigency/internal/logger"

	"github.com/spf13/cobra"
)

// NewGrammarCmd creates the grammar command
func NewGrammarCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "grammar [file]",
		Short: "Check or correct text with LanguageTool",
		Long: `Check text from a file or stdin against the configured LanguageTool server.
With --fix the corrected text is printed instead of the issue list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			if lang == "" {
				lang, err = core.ParseLanguage(config.Get().Generation.Language)
				if err != nil {
					return err
				}
			}
			text, err := readInput(firstArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runGrammar(cmd.Context(), text, lang, fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Print the corrected text")
	addLanguageFlag(cmd)
	return cmd
}

func runGrammar(ctx context.Context, text string, lang core.Language, fix bool) error {
	corrector := grammar.NewFromConfig(config.Get().Grammar, logger.With("component", "grammar"))

	if fix {
		fmt.Println(corrector.Correct(ctx, text, lang))
		return nil
	}

	issues, err := corrector.Check(ctx, text, lang)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No issues found")
		return nil
	}
	for _, issue := range issues {
		fmt.Printf("%d:%d %s [%s]\n", issue.Offset, issue.Length, issue.Message, issue.RuleID)
		if len(issue.Replacements) > 0 {
			fmt.Printf("    suggestions: %s\n", strings.Join(issue.Replacements, ", "))
		}
	}
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
