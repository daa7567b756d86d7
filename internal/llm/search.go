package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultSearchModel answers search-grounded requests.
const DefaultSearchModel = "gemini-2.5-flash"

// Searcher answers a prompt using an external lookup.
type Searcher interface {
	Search(ctx context.Context, prompt string) (string, error)
}

// GoogleSearch answers prompts with Gemini's Google Search grounding tool.
type GoogleSearch struct {
	client *genai.Client
	model  string
}

// NewGoogleSearch creates a search-grounded Gemini client.
func NewGoogleSearch(ctx context.Context, apiKey, model string) (*GoogleSearch, error) {
	client, err := newGenAIClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultSearchModel
	}
	return &GoogleSearch{client: client, model: model}, nil
}

func (g *GoogleSearch) Search(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return "", fmt.Errorf("grounded generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("grounded generate: empty response")
	}
	return text, nil
}
