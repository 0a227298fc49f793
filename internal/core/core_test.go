package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestArticleBodyParagraphs(t *testing.T) {
	body := ArticleBody("First paragraph.\nSecond paragraph.\n\nThird paragraph.")
	paragraphs := body.Paragraphs()

	if len(paragraphs) != 3 {
		t.Fatalf("Expected 3 paragraphs, got %d: %q", len(paragraphs), paragraphs)
	}
	if paragraphs[2] != "Third paragraph." {
		t.Errorf("Expected third paragraph text, got %q", paragraphs[2])
	}
}

func TestGraphTypeValid(t *testing.T) {
	for _, gt := range GraphTypes {
		if !gt.Valid() {
			t.Errorf("Expected %s to be valid", gt)
		}
	}
	if GraphType("radar").Valid() {
		t.Error("Expected radar to be invalid")
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected Language
		wantErr  bool
	}{
		{"slovak", LanguageSlovak, false},
		{"", LanguageSlovak, false},
		{"EN-US", LanguageEnglish, false},
		{"english", LanguageEnglish, false},
		{"german", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLanguage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseLanguage(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}

	if LanguageSlovak.ToolCode() != "sk" || LanguageEnglish.ToolCode() != "en-US" {
		t.Error("Unexpected grammar tool codes")
	}
}

func TestStageOf(t *testing.T) {
	genErr := fmt.Errorf("wrapped: %w", &GenerationError{Stage: StagePerex, Err: errors.New("boom")})
	if stage, ok := StageOf(genErr); !ok || stage != StagePerex {
		t.Errorf("Expected perex stage, got %s (%v)", stage, ok)
	}

	fetchErr := &FetchError{URL: "https://example.com", Err: ErrInvalidURL}
	if stage, ok := StageOf(fetchErr); !ok || stage != StageFetch {
		t.Errorf("Expected fetch stage, got %s (%v)", stage, ok)
	}
	if !errors.Is(fetchErr, ErrInvalidURL) {
		t.Error("Expected FetchError to unwrap to ErrInvalidURL")
	}

	if _, ok := StageOf(errors.New("plain")); ok {
		t.Error("Expected plain error to carry no stage")
	}
}
