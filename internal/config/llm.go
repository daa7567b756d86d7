package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/schematiq/schematiq/internal/llm"
)

// LLMClientConfig resolves the gateway configuration.
// Precedence: explicit config > provider environment variables > defaults.
func (c *AppConfig) LLMClientConfig() (llm.Config, error) {
	provider, err := llm.ValidateProvider(c.LLM.Provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	model := c.LLM.Model
	if model == "" {
		model = llm.DefaultModel(provider)
	}

	apiKey := strings.TrimSpace(c.LLM.APIKey)
	if apiKey == "" {
		apiKey = providerEnvKey(provider)
	}
	if apiKey == "" && provider.RequiresAPIKey() {
		return llm.Config{}, fmt.Errorf("no API key for %s: set llm.apiKey or %s", provider, envHint(provider))
	}

	baseURL := c.LLM.BaseURL
	if baseURL == "" && provider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	return llm.Config{
		Provider:    provider,
		Model:       model,
		SearchModel: c.LLM.SearchModel,
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Timeout:     c.LLM.Timeout,
	}, nil
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderGemini:
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		return key
	default:
		return ""
	}
}

func envHint(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}
