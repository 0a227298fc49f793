package grammar

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"aigency/internal/config"
	"aigency/internal/core"
)

// DefaultDisabledRules turns off the Slovak spelling dictionary, which flags neologisms and names.
var DefaultDisabledRules = []string{"MORFOLOGIK_RULE_SK"}

// Corrector applies grammar fixes that cannot damage proper nouns or punctuation style.
type Corrector struct {
	checker       Checker
	disabledRules []string
	log           *slog.Logger
}

// NewCorrector creates a Corrector. A nil disabledRules uses DefaultDisabledRules.
func NewCorrector(checker Checker, disabledRules []string, log *slog.Logger) *Corrector {
	if disabledRules == nil {
		disabledRules = DefaultDisabledRules
	}
	if log == nil {
		log = slog.Default()
	}
	return &Corrector{checker: checker, disabledRules: disabledRules, log: log}
}

// Check returns the raw issues for text.
func (c *Corrector) Check(ctx context.Context, text string, lang core.Language) ([]Issue, error) {
	return c.checker.Check(ctx, text, lang, c.disabledRules)
}

// Correct returns text with safe corrections applied. A failing checker leaves text unchanged.
func (c *Corrector) Correct(ctx context.Context, text string, lang core.Language) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	issues, err := c.Check(ctx, text, lang)
	if err != nil {
		c.log.WarnContext(ctx, "grammar check failed, keeping text unchanged", "language", lang, "error", err.Error())
		return text
	}
	corrected := ApplyIssues(text, issues)
	if corrected != text {
		c.log.DebugContext(ctx, "grammar corrections applied", "issues", len(issues))
	}
	return corrected
}

// ApplyIssues splices the first replacement of every issue into text, working from the
// highest offset down. An issue is skipped when its span is not entirely lowercase
// (likely a proper noun), when the replacement only moves commas, or when it has no
// replacement or an out-of-range span.
func ApplyIssues(text string, issues []Issue) string {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset > sorted[j].Offset })

	units := utf16.Encode([]rune(text))
	for _, issue := range sorted {
		if len(issue.Replacements) == 0 {
			continue
		}
		start, end := issue.Offset, issue.Offset+issue.Length
		if start < 0 || issue.Length < 0 || end > len(units) {
			continue
		}

		span := string(utf16.Decode(units[start:end]))
		if !isLower(span) {
			continue
		}
		replacement := issue.Replacements[0]
		if commaOnlyChange(span, replacement) {
			continue
		}

		repl := utf16.Encode([]rune(replacement))
		next := make([]uint16, 0, len(units)-issue.Length+len(repl))
		next = append(next, units[:start]...)
		next = append(next, repl...)
		next = append(next, units[end:]...)
		units = next
	}
	return string(utf16.Decode(units))
}

// isLower reports whether s has at least one cased letter and no upper or title case letters.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

// commaOnlyChange reports whether replacement differs from original only by commas.
func commaOnlyChange(original, replacement string) bool {
	if original == replacement {
		return false
	}
	return normalizeCommas(original) == normalizeCommas(replacement)
}

func normalizeCommas(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), " ")
}

// NewFromConfig creates a Corrector backed by the LanguageTool server in cfg.
func NewFromConfig(cfg config.Grammar, log *slog.Logger) *Corrector {
	client := NewLanguageToolClient(cfg.Endpoint, config.Duration(cfg.Timeout, 20*time.Second))
	return NewCorrector(client, cfg.DisabledRules, log)
}
