package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aigency/internal/core"
	"aigency/internal/generator"
)

type fakeGenerator struct {
	failures map[string]int   // remaining failures per URL
	errs     map[string]error // permanent error per URL
	calls    map[string]int
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{failures: map[string]int{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeGenerator) GenerateArticle(ctx context.Context, req generator.ArticleRequest) (*core.ArticleResult, error) {
	f.calls[req.URL]++
	if err := f.errs[req.URL]; err != nil {
		return nil, err
	}
	if f.failures[req.URL] > 0 {
		f.failures[req.URL]--
		return nil, &core.GenerationError{Stage: core.StageBody, Err: errors.New("model overloaded")}
	}
	return &core.ArticleResult{
		URL:      req.URL,
		Headline: "Titulok pre " + req.URL,
		Perex:    "Perex; so bodkočiarkou",
		Body:     "Odsek 1.\nOdsek 2.\nOdsek 3.",
		Tags:     []string{"#BENZÍN", "#NAFTA"},
	}, nil
}

func newTestRunner(gen ArticleGenerator) *Runner {
	r := NewRunner(gen, Options{Rate: -1})
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return r
}

func readOutput(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	reader := csv.NewReader(buf)
	reader.Comma = Delimiter
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV output: %v", err)
	}
	return records
}

func TestRunWritesRows(t *testing.T) {
	gen := newFakeGenerator()
	jobs := []Job{
		{Site: "sme.sk", URL: "https://sme.sk/a"},
		{Site: "pravda.sk", URL: "https://pravda.sk/b"},
	}

	var buf bytes.Buffer
	summary, err := newTestRunner(gen).Run(context.Background(), jobs, &buf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 2 || summary.Failed != 0 || summary.RunID == "" {
		t.Errorf("summary = %+v", summary)
	}

	records := readOutput(t, &buf)
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if strings.Join(records[0], ";") != "News Site;Headline;Perex;Article;Tags" {
		t.Errorf("header = %v", records[0])
	}
	row := records[1]
	if row[0] != "sme.sk" || row[2] != "Perex; so bodkočiarkou" || row[3] != "Odsek 1.\nOdsek 2.\nOdsek 3." {
		t.Errorf("row = %q", row)
	}
	if row[4] != "#benzín, #nafta" {
		t.Errorf("tags = %q, want lower-cased joined tags", row[4])
	}
}

func TestRunRetriesGenerationErrors(t *testing.T) {
	gen := newFakeGenerator()
	gen.failures["https://sme.sk/a"] = 2

	var buf bytes.Buffer
	summary, err := newTestRunner(gen).Run(context.Background(), []Job{{Site: "sme.sk", URL: "https://sme.sk/a"}}, &buf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gen.calls["https://sme.sk/a"] != 3 {
		t.Errorf("calls = %d, want 3", gen.calls["https://sme.sk/a"])
	}
	if summary.Processed != 1 {
		t.Errorf("Processed = %d, want 1", summary.Processed)
	}
}

func TestRunSkipsAfterRetriesExhausted(t *testing.T) {
	gen := newFakeGenerator()
	gen.failures["https://sme.sk/a"] = 5

	var buf bytes.Buffer
	jobs := []Job{{Site: "sme.sk", URL: "https://sme.sk/a"}, {Site: "sme.sk", URL: "https://sme.sk/b"}}
	summary, err := newTestRunner(gen).Run(context.Background(), jobs, &buf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gen.calls["https://sme.sk/a"] != DefaultRetries {
		t.Errorf("calls = %d, want %d", gen.calls["https://sme.sk/a"], DefaultRetries)
	}
	if summary.Processed != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 processed and 1 failed", summary)
	}
	if records := readOutput(t, &buf); len(records) != 2 {
		t.Errorf("got %d records, want header + 1", len(records))
	}
}

func TestRunDoesNotRetryFetchErrors(t *testing.T) {
	gen := newFakeGenerator()
	gen.errs["https://sme.sk/a"] = &core.FetchError{URL: "https://sme.sk/a", Err: errors.New("404")}

	var buf bytes.Buffer
	summary, _ := newTestRunner(gen).Run(context.Background(), []Job{{URL: "https://sme.sk/a"}}, &buf)
	if gen.calls["https://sme.sk/a"] != 1 {
		t.Errorf("calls = %d, want 1", gen.calls["https://sme.sk/a"])
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := newTestRunner(newFakeGenerator()).Run(ctx, []Job{{URL: "https://sme.sk/a"}}, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseJobs(t *testing.T) {
	input := "site;url\nsme.sk;https://sme.sk/a\n;https://www.pravda.sk/b\nhttps://dennikn.sk/c\nbroken;not-a-url\n"

	jobs, err := ParseJobs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseJobs() error = %v", err)
	}
	want := []Job{
		{Site: "sme.sk", URL: "https://sme.sk/a"},
		{Site: "pravda.sk", URL: "https://www.pravda.sk/b"},
		{Site: "dennikn.sk", URL: "https://dennikn.sk/c"},
	}
	if len(jobs) != len(want) {
		t.Fatalf("jobs = %+v, want %+v", jobs, want)
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("jobs[%d] = %+v, want %+v", i, jobs[i], want[i])
		}
	}
}

func TestReadJobsFromLinksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.md")
	content := "- [A](https://sme.sk/a)\n- https://pravda.sk/b\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	jobs, err := ReadJobs(path)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].Site != "sme.sk" || jobs[1].URL != "https://pravda.sk/b" {
		t.Errorf("jobs = %+v", jobs)
	}
}
