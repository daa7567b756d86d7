// Package llm is the model gateway: it turns prompts into structured JSON
// values or free text using CloudWeGo Eino chat models, with Gemini search
// grounding for lookups.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Config holds configuration for creating the gateway's model clients.
type Config struct {
	Provider    Provider
	Model       string        // Chat model; provider default when empty
	SearchModel string        // Gemini model used for search-grounded text
	APIKey      string        // Not needed for Ollama
	BaseURL     string        // Ollama server or OpenAI-compatible endpoint
	Timeout     time.Duration // Per-request timeout; zero means none
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

// NewChatModel creates the Eino chat model for the configured provider.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	if cfg.Provider.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:   cfg.model(),
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   cfg.model(),
			Timeout: cfg.Timeout,
		})

	case ProviderAnthropic:
		var baseURL *string
		if cfg.BaseURL != "" {
			baseURL = &cfg.BaseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.model(),
			BaseURL:   baseURL,
			MaxTokens: 8192,
		})

	case ProviderGemini:
		client, err := newGenAIClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.model(),
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func newGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// New wires a Gateway for cfg. Gemini gets a search-grounded lookup client;
// other providers answer lookups from the chat model alone.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	chat, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithTimeout(cfg.Timeout)}
	if cfg.Provider == ProviderGemini {
		searcher, err := NewGoogleSearch(ctx, cfg.APIKey, cfg.SearchModel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSearcher(searcher))
	}
	return NewGateway(chat, opts...), nil
}
