package llm

import (
	"fmt"
	"strings"
)

// Provider identifies the LLM provider behind the gateway.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"

	// DefaultProvider is used when no provider is configured.
	DefaultProvider = ProviderGemini
)

// DefaultOllamaURL is the default URL for a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderOllama:    "llama3.1",
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderGemini:    "gemini-2.5-flash",
}

// DefaultModel returns the chat model used for a provider when none is set.
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// ValidateProvider checks if the given provider string is supported.
func ValidateProvider(p string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(p))) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderOllama:
		return ProviderOllama, nil
	case ProviderAnthropic, "claude":
		return ProviderAnthropic, nil
	case ProviderGemini, "google":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported provider: %q (supported: openai, ollama, anthropic, gemini)", p)
	}
}

// RequiresAPIKey reports whether the provider needs credentials.
func (p Provider) RequiresAPIKey() bool {
	return p != ProviderOllama
}
