package handlers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aigency/internal/core"
	"aigency/internal/render"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	want := []string{"topics", "article", "regenerate", "graph", "grammar", "research", "batch", "serve", "cache", "migrate"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered (err = %v)", name, err)
		}
	}

	for _, path := range [][]string{{"cache", "stats"}, {"cache", "cleanup"}, {"migrate", "up"}, {"migrate", "status"}} {
		if cmd, _, err := root.Find(path); err != nil || cmd.Name() != path[1] {
			t.Errorf("command %v not registered", path)
		}
	}
}

func TestRunRegenerateValidatesInput(t *testing.T) {
	tests := []struct {
		field string
		opts  regenerateOptions
		want  string
	}{
		{fieldPerex, regenerateOptions{topic: "t", prior: []string{"p"}}, "--headline is required"},
		{fieldTags, regenerateOptions{topic: "t", headline: "h", prior: []string{"p"}}, "--article-file is required"},
		{fieldBody, regenerateOptions{topic: "t", headline: "h", prior: []string{"a", "b"}}, "exactly one --prior"},
	}

	for _, tt := range tests {
		err := runRegenerate(t.Context(), tt.field, tt.opts)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("runRegenerate(%s) error = %v, want %q", tt.field, err, tt.want)
		}
	}
}

func TestRenderResult(t *testing.T) {
	result := &core.ArticleResult{ID: "abc", Headline: "Titulok", Body: "A\nB\nC"}

	for _, format := range []string{"", render.FormatMarkdown, render.FormatHTML, render.FormatJSON} {
		out, err := renderResult(result, format)
		if err != nil {
			t.Errorf("renderResult(%q) error = %v", format, err)
			continue
		}
		if !strings.Contains(out, "Titulok") {
			t.Errorf("renderResult(%q) = %q, missing headline", format, out)
		}
	}

	if _, err := renderResult(result, "pdf"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestReadInput(t *testing.T) {
	text, err := readInput("", strings.NewReader("zo vstupu"))
	if err != nil || text != "zo vstupu" {
		t.Errorf("readInput(stdin) = %q, %v", text, err)
	}

	path := filepath.Join(t.TempDir(), "text.txt")
	if err := os.WriteFile(path, []byte("zo súboru"), 0644); err != nil {
		t.Fatal(err)
	}
	text, err = readInput(path, nil)
	if err != nil || text != "zo súboru" {
		t.Errorf("readInput(file) = %q, %v", text, err)
	}

	if _, err := readInput(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected an error for a missing file")
	}
}
