// Package batch generates articles for a list of source URLs and writes them as CSV.
package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"aigency/internal/core"
	"aigency/internal/generator"
	"aigency/internal/logger"
	"aigency/internal/scrape"
)

// Header is the first CSV row
var Header = []string{"News Site", "Headline", "Perex", "Article", "Tags"}

// Delimiter separates CSV fields
const Delimiter = ';'

// Defaults applied when Options leaves a field zero
const (
	DefaultRetries    = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultRate       = 0.5 // articles per second
)

// Job is one source article to generate from
type Job struct {
	Site string
	URL  string
}

// ArticleGenerator produces a full article for a request
type ArticleGenerator interface {
	GenerateArticle(ctx context.Context, req generator.ArticleRequest) (*core.ArticleResult, error)
}

// Options configures a batch run
type Options struct {
	Retries    int
	RetryDelay time.Duration
	Rate       float64 // articles per second; negative disables pacing
	Augment    bool
}

// Summary reports the outcome of a batch run
type Summary struct {
	RunID     string
	Processed int
	Failed    int
	Duration  time.Duration
}

// Runner generates articles one at a time with retries and pacing
type Runner struct {
	gen     ArticleGenerator
	opts    Options
	limiter *rate.Limiter
	log     *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a batch runner
func NewRunner(gen ArticleGenerator, opts Options) *Runner {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Rate == 0 {
		opts.Rate = DefaultRate
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}

	return &Runner{
		gen:     gen,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.With("component", "batch"),
		sleep:   sleepContext,
	}
}

// Run generates an article for every job and writes one CSV row per success.
// Failed jobs are logged and skipped.
func (r *Runner) Run(ctx context.Context, jobs []Job, out io.Writer) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	log := r.log.With("run_id", summary.RunID)

	w := csv.NewWriter(out)
	w.Comma = Delimiter
	if err := w.Write(Header); err != nil {
		return summary, fmt.Errorf("failed to write CSV header: %w", err)
	}

	log.Info("Batch started", "jobs", len(jobs))
	for i, job := range jobs {
		if err := r.limiter.Wait(ctx); err != nil {
			w.Flush()
			return summary, err
		}

		log.Info("Processing article", "index", i+1, "total", len(jobs), "url", job.URL)
		result, err := r.generate(ctx, job)
		if err != nil {
			if ctx.Err() != nil {
				w.Flush()
				return summary, ctx.Err()
			}
			summary.Failed++
			log.Warn("Failed to process article", "url", job.URL, "error", err.Error())
			continue
		}

		if err := w.Write(Row(job.Site, result)); err != nil {
			return summary, fmt.Errorf("failed to write CSV row: %w", err)
		}
		w.Flush()
		summary.Processed++
	}

	w.Flush()
	summary.Duration = time.Since(start)
	log.Info("Batch completed",
		"processed", summary.Processed, "failed", summary.Failed, "duration", summary.Duration)
	return summary, w.Error()
}

// generate retries generation failures. Fetch errors and unsupported combinations
// are not retried.
func (r *Runner) generate(ctx context.Context, job Job) (*core.ArticleResult, error) {
	req := generator.ArticleRequest{URL: job.URL, Augment: r.opts.Augment}

	var lastErr error
	for attempt := 1; attempt <= r.opts.Retries; attempt++ {
		result, err := r.gen.GenerateArticle(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}

		r.log.Debug("Attempt failed", "url", job.URL, "attempt", attempt, "error", err.Error())
		if attempt < r.opts.Retries {
			if err := r.sleep(ctx, r.opts.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", r.opts.Retries, lastErr)
}

func retryable(err error) bool {
	var fetchErr *core.FetchError
	var unsupported *core.UnsupportedCombinationError
	return !errors.As(err, &fetchErr) && !errors.As(err, &unsupported)
}

// Row converts an article into a CSV row. Tags are joined and lower-cased.
func Row(site string, result *core.ArticleResult) []string {
	return []string{
		site,
		result.Headline,
		result.Perex,
		result.Body,
		strings.ToLower(strings.Join(result.Tags, ", ")),
	}
}

// ReadJobs reads jobs from a semicolon separated file with "site;url" rows, or from a
// plain text file of URLs where each URL's host becomes its site.
func ReadJobs(path string) ([]Job, error) {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return ParseJobs(f)
	}

	links, err := scrape.ReadLinksFromFile(path)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(links))
	for _, link := range links {
		jobs = append(jobs, Job{Site: siteOf(link.URL), URL: link.URL})
	}
	return jobs, nil
}

// ParseJobs parses "site;url" rows. A header row and rows without a URL are skipped.
func ParseJobs(r io.Reader) ([]Job, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse jobs: %w", err)
	}

	var jobs []Job
	for _, record := range records {
		var site, url string
		switch len(record) {
		case 0:
			continue
		case 1:
			url = strings.TrimSpace(record[0])
		default:
			site, url = strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		}
		if _, err := scrape.ValidateURL(url); err != nil {
			continue
		}
		if site == "" {
			site = siteOf(url)
		}
		jobs = append(jobs, Job{Site: site, URL: url})
	}
	return jobs, nil
}

func siteOf(rawURL string) string {
	u, err := scrape.ValidateURL(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
