package domain

import (
	"encoding/json"
	"strings"
)

// NormalizeCharacteristics flattens the characteristic list encodings the
// backend has been observed to return. Values arrive either as a plain array
// of strings, as a JSON-stringified array, or as an array whose elements are
// themselves JSON-stringified arrays. Flattening goes one level deep; anything
// that does not parse is kept as its raw string value. The function never
// fails and never mutates its input.
func NormalizeCharacteristics(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = append(out, expandStringified(s)...)
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				continue
			}
			out = append(out, expandStringified(s)...)
		}
		return out
	case string:
		if parsed, ok := parseStringArray(v); ok {
			out := make([]string, 0, len(parsed))
			for _, s := range parsed {
				out = append(out, expandStringified(s)...)
			}
			return out
		}
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// expandStringified returns the elements of s if it is a JSON-stringified
// array, otherwise s itself. This is the single level of nested flattening;
// deeper encodings are passed through untouched.
func expandStringified(s string) []string {
	if parsed, ok := parseStringArray(s); ok {
		return parsed
	}
	return []string{s}
}

// parseStringArray attempts to decode s as a JSON array of strings.
func parseStringArray(s string) ([]string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var elems []any
	if err := json.Unmarshal([]byte(trimmed), &elems); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if str, ok := e.(string); ok {
			out = append(out, str)
		}
	}
	return out, true
}
