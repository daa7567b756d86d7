package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schematiq/schematiq/internal/llm"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.True(t, cfg.Server.DevTokens)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, DevSecret, cfg.Auth.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TTL)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.Seed.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCHEMATIQ_SERVER_PORT", "8080")
	t.Setenv("SCHEMATIQ_AUTH_TTL", "90m")
	t.Setenv("SCHEMATIQ_STORE_DRIVER", "sqlite")
	t.Setenv("SCHEMATIQ_STORE_PATH", "/tmp/plans.db")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TTL)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/plans.db", cfg.Store.Path)
}

func TestLoad_ConfigFile(t *testing.T) {
	v := newViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
server:
  allowedOrigins: ["http://localhost:3000"]
llm:
  provider: ollama
  model: llama3.1
log:
  level: debug
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]func(v *viper.Viper){
		"short secret":     func(v *viper.Viper) { v.Set("auth.secret", "short") },
		"bad port":         func(v *viper.Viper) { v.Set("server.port", 70000) },
		"unknown driver":   func(v *viper.Viper) { v.Set("store.driver", "postgres") },
		"sqlite no path":   func(v *viper.Viper) { v.Set("store.driver", "sqlite") },
		"bad log level":    func(v *viper.Viper) { v.Set("log.level", "loud") },
		"telemetry no key": func(v *viper.Viper) { v.Set("telemetry.enabled", true) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			v := newViper(t)
			mutate(v)
			_, err := Load(v)
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLLMClientConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	got, err := cfg.LLMClientConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGemini, got.Provider)
	assert.Equal(t, llm.DefaultModel(llm.ProviderGemini), got.Model)
	assert.Equal(t, "google-key", got.APIKey)
	assert.Equal(t, 60*time.Second, got.Timeout)
}

func TestLLMClientConfig_ExplicitKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	v := newViper(t)
	v.Set("llm.provider", "openai")
	v.Set("llm.apiKey", "config-key")
	v.Set("llm.model", "gpt-4.1-mini")

	cfg, err := Load(v)
	require.NoError(t, err)
	got, err := cfg.LLMClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "config-key", got.APIKey)
	assert.Equal(t, "gpt-4.1-mini", got.Model)
}

func TestLLMClientConfig_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	v := newViper(t)
	v.Set("llm.provider", "anthropic")

	cfg, err := Load(v)
	require.NoError(t, err)
	_, err = cfg.LLMClientConfig()
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestLLMClientConfig_OllamaNeedsNoKey(t *testing.T) {
	v := newViper(t)
	v.Set("llm.provider", "ollama")

	cfg, err := Load(v)
	require.NoError(t, err)
	got, err := cfg.LLMClientConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultOllamaURL, got.BaseURL)
}

func TestLLMClientConfig_UnknownProvider(t *testing.T) {
	v := newViper(t)
	v.Set("llm.provider", "bedrock")

	cfg, err := Load(v)
	require.NoError(t, err)
	_, err = cfg.LLMClientConfig()
	assert.ErrorContains(t, err, "invalid provider")
}
