package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	defer Reset()

	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cache.TTL != "1h" {
		t.Errorf("expected cache ttl 1h, got %s", cfg.Cache.TTL)
	}
	if cfg.Generation.HeadlinesCount != 3 || cfg.Generation.TagsCount != 4 || cfg.Generation.TopicsCount != 5 {
		t.Errorf("unexpected generation counts: %+v", cfg.Generation)
	}
	if len(cfg.Grammar.DisabledRules) != 1 || cfg.Grammar.DisabledRules[0] != "MORFOLOGIK_RULE_SK" {
		t.Errorf("unexpected disabled rules: %v", cfg.Grammar.DisabledRules)
	}
	if cfg.Research.Timeout != "10m" {
		t.Errorf("expected research timeout 10m, got %s", cfg.Research.Timeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	Reset()
	defer Reset()

	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "aigency.yaml")
	content := []byte("cache:\n  backend: sqlite\n  ttl: 30m\ngeneration:\n  language: english\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", cfg.Cache.Backend)
	}
	if Duration(cfg.Cache.TTL, time.Hour) != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %s", cfg.Cache.TTL)
	}
	if cfg.Generation.Language != "english" {
		t.Errorf("expected english, got %s", cfg.Generation.Language)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	Reset()
	defer Reset()

	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "aigency.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  backend: memcached\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", 5*time.Second); got != 5*time.Second {
		t.Errorf("expected fallback, got %v", got)
	}
	if got := Duration("bogus", time.Second); got != time.Second {
		t.Errorf("expected fallback for invalid value, got %v", got)
	}
	if got := Duration("2s", time.Second); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
}
