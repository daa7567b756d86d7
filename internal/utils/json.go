package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a model response carries no JSON value at all.
var ErrNoJSON = errors.New("no JSON found in response")

var trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

// ExtractAndParseJSON decodes the JSON value a model response starts with
// into T. A surrounding markdown fence and prose after the value are
// ignored. A response that does not open with an object or array is
// ErrNoJSON, so refusals are never read as data. Trailing commas, raw
// control characters and invalid escapes are repaired; truncated output
// is not.
func ExtractAndParseJSON[T any](response string) (T, error) {
	var result T

	cleaned := stripFences(response)
	if cleaned == "" {
		return result, ErrNoJSON
	}

	// A JSON string literal wrapping the real payload.
	if strings.HasPrefix(cleaned, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(cleaned), &inner); err == nil {
			return ExtractAndParseJSON[T](inner)
		}
	}

	if cleaned[0] != '{' && cleaned[0] != '[' {
		return result, ErrNoJSON
	}

	err := decodeFirst(cleaned, &result)
	if err == nil {
		return result, nil
	}

	repaired := repairJSON(cleaned)
	if repaired != cleaned {
		var retry T
		if decodeFirst(repaired, &retry) == nil {
			return retry, nil
		}
	}
	return result, fmt.Errorf("parse JSON: %w", err)
}

// ExtractJSON decodes a model response into a generic JSON value
// (map[string]any, []any, string, float64, bool or nil).
func ExtractJSON(response string) (any, error) {
	return ExtractAndParseJSON[any](response)
}

// decodeFirst decodes one JSON value and ignores anything after it.
func decodeFirst(s string, v any) error {
	return json.NewDecoder(strings.NewReader(s)).Decode(v)
}

func stripFences(response string) string {
	response = strings.TrimSpace(response)
	if start := strings.Index(response, "```"); start != -1 {
		body := response[start+3:]
		// Drop the language tag on the opening fence line.
		if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.ContainsAny(body[:nl], "{[") {
			body = body[nl+1:]
		}
		if end := strings.LastIndex(body, "```"); end != -1 {
			body = body[:end]
		}
		response = body
	}
	return strings.TrimSpace(response)
}

func repairJSON(input string) string {
	out := sanitizeStrings(input)
	return trailingCommaRegex.ReplaceAllString(out, `$1`)
}

// sanitizeStrings escapes raw control characters and invalid backslash
// escapes that appear inside string literals.
func sanitizeStrings(input string) string {
	var b strings.Builder
	b.Grow(len(input) + 16)

	inString := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '\\':
			if i+1 < len(input) && isJSONEscape(input[i+1]) {
				b.WriteByte(c)
				b.WriteByte(input[i+1])
				i++
			} else {
				b.WriteString(`\\`)
			}
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isJSONEscape(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}
