package persistence

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"testing/fstest"

	"aigency/internal/core"
)

func fp(v float64) *float64 { return &v }

func sampleResult() *core.ArticleResult {
	return &core.ArticleResult{
		ID:           "8b1f5a52-6f3a-4f8e-9d2e-1c2b3a4d5e6f",
		URL:          "https://example.com/news/1",
		Topic:        "Zdražovanie pohonných látok",
		Headline:     "Prvý titulok",
		Headlines:    []string{"Prvý titulok", "Druhý titulok"},
		Perex:        "Perex článku.",
		EngagingText: "Háčik pre čitateľa.",
		Body:         "Odsek 1.\nOdsek 2.\nOdsek 3.",
		Tags:         []string{"#BENZÍN", "#NAFTA"},
		Language:     core.LanguageSlovak,
		Graph: &core.GraphSpec{
			ShouldGenerate: true,
			Type:           core.GraphBar,
			Data: &core.GraphData{
				Labels: []string{"Benzín", "Nafta"},
				Values: []*float64{fp(1.65), fp(1.55)},
			},
		},
	}
}

func TestBuildArticleDataPayload(t *testing.T) {
	data := BuildArticleData(sampleResult())

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	checks := map[string]string{
		"url":           "url",
		"heading":       "heading_content",
		"topic":         "topic_content",
		"perex":         "perex_content",
		"body":          "body_content",
		"engaging_text": "engaging_text_content",
	}
	for field, key := range checks {
		obj, ok := payload[field].(map[string]any)
		if !ok {
			t.Errorf("payload[%q] missing or not an object", field)
			continue
		}
		if _, ok := obj[key]; !ok {
			t.Errorf("payload[%q] has no %q key", field, key)
		}
	}

	if data.Heading.HeadingContent != "Prvý titulok" {
		t.Errorf("heading = %q, want the first headline", data.Heading.HeadingContent)
	}
	tags, ok := payload["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("tags = %v, want 2 entries", payload["tags"])
	}
	if tag := tags[0].(map[string]any)["tags_content"]; tag != "#BENZÍN" {
		t.Errorf("tags[0].tags_content = %v", tag)
	}

	graph, ok := payload["graph_data"].(map[string]any)
	if !ok {
		t.Fatal("graph_data missing")
	}
	if graph["graph_type"] != "bar" {
		t.Errorf("graph_type = %v, want bar", graph["graph_type"])
	}
	if labels := graph["graph_labels"].([]any); len(labels) != 2 || labels[0] != "Benzín" {
		t.Errorf("graph_labels = %v", labels)
	}
	if values := graph["graph_values"].([]any); len(values) != 2 || values[1] != 1.55 {
		t.Errorf("graph_values = %v", values)
	}
}

func TestBuildArticleDataHeading(t *testing.T) {
	result := sampleResult()
	result.Headline = "Druhý titulok"
	if got := BuildArticleData(result).Heading.HeadingContent; got != "Druhý titulok" {
		t.Errorf("heading = %q, want the chosen headline", got)
	}

	result.Headline = ""
	if got := BuildArticleData(result).Heading.HeadingContent; got != "Prvý titulok" {
		t.Errorf("heading = %q, want the first candidate", got)
	}
}

func TestBuildArticleDataScatterUsesXY(t *testing.T) {
	result := sampleResult()
	result.Graph = &core.GraphSpec{
		ShouldGenerate: true,
		Type:           core.GraphScatter,
		Data: &core.GraphData{
			XVals: []*float64{fp(1), fp(2)},
			YVals: []*float64{fp(10), fp(20)},
		},
	}

	data := BuildArticleData(result)
	if data.GraphData == nil {
		t.Fatal("GraphData = nil")
	}
	if len(data.GraphData.GraphLabels) != 2 || *data.GraphData.GraphLabels[1].(*float64) != 2 {
		t.Errorf("GraphLabels = %v, want x values", data.GraphData.GraphLabels)
	}
	if *data.GraphData.GraphValues[0] != 10 {
		t.Errorf("GraphValues[0] = %v, want 10", *data.GraphData.GraphValues[0])
	}
}

func TestBuildArticleDataOmitsDisabledGraph(t *testing.T) {
	result := sampleResult()
	result.Graph.ShouldGenerate = false

	data := BuildArticleData(result)
	if data.GraphData != nil {
		t.Errorf("GraphData = %+v, want nil", data.GraphData)
	}

	raw, _ := json.Marshal(data)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)
	if _, ok := payload["graph_data"]; ok {
		t.Error("graph_data present for a disabled chart")
	}

	result.Graph = nil
	if BuildArticleData(result).GraphData != nil {
		t.Error("GraphData set for an article without a chart")
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		name        string
		version     int
		description string
		ok          bool
	}{
		{"001_generated_articles.sql", 1, "generated articles", true},
		{"012_add_graph_index.sql", 12, "add graph index", true},
		{"initial.sql", 0, "", false},
		{"abc_initial.sql", 0, "", false},
	}
	for _, tt := range tests {
		version, description, ok := parseMigrationName(tt.name)
		if version != tt.version || description != tt.description || ok != tt.ok {
			t.Errorf("parseMigrationName(%q) = %d, %q, %v; want %d, %q, %v",
				tt.name, version, description, ok, tt.version, tt.description, tt.ok)
		}
	}
}

func TestLoadMigrationsSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_second.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_first.sql":  {Data: []byte("SELECT 1;")},
		"migrations/readme.txt":     {Data: []byte("ignored")},
		"migrations/bad.sql":        {Data: []byte("ignored")},
	}
	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) != 2 || migrations[0].Version != 1 || migrations[1].SQL != "SELECT 2;" {
		t.Errorf("migrations = %+v", migrations)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationFiles)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) == 0 || migrations[0].Version != 1 {
		t.Fatalf("migrations = %+v, want version 1 first", migrations)
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := NewPostgresDB(dsn, PoolOptions{})
	if err != nil {
		t.Fatalf("NewPostgresDB() error = %v", err)
	}
	defer db.Close()

	if _, err := NewMigrator(db).Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	data := BuildArticleData(sampleResult())
	id, err := db.Articles().Save(ctx, data)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	defer db.Articles().Delete(ctx, id)

	got, err := db.Articles().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Heading != data.Heading || got.Body != data.Body || len(got.Tags) != 2 {
		t.Errorf("Get() = %+v, want %+v", got, data)
	}
	if got.GraphData == nil || got.GraphData.GraphType != core.GraphBar {
		t.Errorf("GraphData = %+v", got.GraphData)
	}
}

func TestNewPostgresDBRequiresConnectionString(t *testing.T) {
	if _, err := NewPostgresDB("", PoolOptions{}); err == nil {
		t.Error("expected error for empty connection string")
	}
}
