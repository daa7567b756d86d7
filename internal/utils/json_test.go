package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestExtractAndParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     samplePayload
	}{
		{
			name:     "plain object",
			response: `{"title":"Launch","tags":["Tech"]}`,
			want:     samplePayload{Title: "Launch", Tags: []string{"Tech"}},
		},
		{
			name:     "json fence",
			response: "```json\n{\"title\":\"Launch\",\"tags\":[]}\n```",
			want:     samplePayload{Title: "Launch", Tags: []string{}},
		},
		{
			name:     "bare fence with surrounding prose",
			response: "Here is your plan:\n```\n{\"title\":\"Clean\"}\n```\nGood luck!",
			want:     samplePayload{Title: "Clean"},
		},
		{
			name:     "trailing prose",
			response: `{"title":"Clean"} Let me know if you need more.`,
			want:     samplePayload{Title: "Clean"},
		},
		{
			name:     "trailing commas",
			response: `{"title":"Clean","tags":["A","B",],}`,
			want:     samplePayload{Title: "Clean", Tags: []string{"A", "B"}},
		},
		{
			name:     "raw newline inside string",
			response: "{\"title\":\"line one\nline two\"}",
			want:     samplePayload{Title: "line one\nline two"},
		},
		{
			name:     "invalid escape",
			response: `{"title":"C:\code\dir"}`,
			want:     samplePayload{Title: `C:\code\dir`},
		},
		{
			name:     "double-encoded payload",
			response: `"{\"title\":\"Clean\"}"`,
			want:     samplePayload{Title: "Clean"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAndParseJSON[samplePayload](tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAndParseJSON_NoJSON(t *testing.T) {
	for _, response := range []string{
		"",
		"   ",
		"I cannot help with that.",
		"```\n```",
		"I'm sorry, I can't revise step [2] right now.",
		`Sure! {"title":"Clean"} Let me know if you need more.`,
		"```json\nHere you go: [1, 2]\n```",
	} {
		_, err := ExtractAndParseJSON[samplePayload](response)
		assert.ErrorIs(t, err, ErrNoJSON, "response %q", response)
	}
}

func TestExtractAndParseJSON_Unrepairable(t *testing.T) {
	for _, response := range []string{
		`{"title": nope}`,
		`{"title":"Clean","tags":["A","B`,
		`[{"id":"d","title":"Delta"},{"id":"e","ti`,
	} {
		_, err := ExtractAndParseJSON[any](response)
		require.Error(t, err, response)
		assert.NotErrorIs(t, err, ErrNoJSON, response)
	}
}

func TestExtractJSON_PreservesShape(t *testing.T) {
	arr, err := ExtractJSON("```json\n[{\"id\":\"a\"},{\"id\":\"b\"}]\n```")
	require.NoError(t, err)
	list, ok := arr.([]any)
	require.True(t, ok, "expected a list, got %T", arr)
	assert.Len(t, list, 2)

	obj, err := ExtractJSON(`{"steps":{"1":{"id":"a"}}}`)
	require.NoError(t, err)
	m, ok := obj.(map[string]any)
	require.True(t, ok)
	assert.IsType(t, map[string]any{}, m["steps"])
}

func TestSanitizeStrings(t *testing.T) {
	assert.Equal(t, `{"a":"x\ny"}`, sanitizeStrings("{\"a\":\"x\ny\"}"))
	assert.Equal(t, `{"a":"tab\there"}`, sanitizeStrings("{\"a\":\"tab\there\"}"))
	assert.Equal(t, `{"a":"\\c"}`, sanitizeStrings(`{"a":"\c"}`))
	assert.Equal(t, `{"a":"\"q\""}`, sanitizeStrings(`{"a":"\"q\""}`))
	assert.Equal(t, "{\n\"a\": 1}", sanitizeStrings("{\n\"a\": 1}"), "whitespace outside strings is untouched")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "héll...", Truncate("héllo wörld", 7))
}
