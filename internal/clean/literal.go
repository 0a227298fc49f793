package clean

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLiteralList parses a flat Python-style list literal such as
// ['2021', '2022', None] or [1.5, 2, nan]. Nested lists are rejected.
func parseLiteralList(s string) ([]any, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != '[' && s[0] != '(') {
		return nil, fmt.Errorf("not a list literal: %q", s)
	}
	closing := byte(']')
	if s[0] == '(' {
		closing = ')'
	}
	if s[len(s)-1] != closing {
		return nil, fmt.Errorf("unterminated list literal: %q", s)
	}
	body := s[1 : len(s)-1]

	var items []any
	i := 0
	for {
		for i < len(body) && isSpace(body[i]) {
			i++
		}
		if i >= len(body) {
			break
		}

		switch c := body[i]; c {
		case '\'', '"':
			end := i + 1
			var sb strings.Builder
			for end < len(body) && body[end] != c {
				if body[end] == '\\' && end+1 < len(body) {
					end++
				}
				sb.WriteByte(body[end])
				end++
			}
			if end >= len(body) {
				return nil, fmt.Errorf("unterminated string in list literal")
			}
			items = append(items, sb.String())
			i = end + 1
		case '[', '(', '{':
			return nil, fmt.Errorf("nested values are not supported")
		default:
			end := i
			for end < len(body) && body[end] != ',' {
				end++
			}
			token := strings.TrimSpace(body[i:end])
			items = append(items, literalToken(token))
			i = end
		}

		for i < len(body) && isSpace(body[i]) {
			i++
		}
		if i < len(body) {
			if body[i] != ',' {
				return nil, fmt.Errorf("expected ',' in list literal at %d", i)
			}
			i++
		}
	}
	return items, nil
}

func literalToken(token string) any {
	switch strings.ToLower(token) {
	case "none", "null", "nan", "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	return token
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
