package core

import (
	"fmt"
	"strings"
)

// Language is the output language of generated content.
type Language string

const (
	LanguageSlovak  Language = "slovak"
	LanguageEnglish Language = "english"
)

// ParseLanguage accepts a language name or its grammar tool code.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "slovak", "sk":
		return LanguageSlovak, nil
	case "english", "en", "en-us":
		return LanguageEnglish, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// ToolCode returns the LanguageTool language code.
func (l Language) ToolCode() string {
	if l == LanguageEnglish {
		return "en-US"
	}
	return "sk"
}
