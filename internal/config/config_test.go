package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OPENAI_MAX_TOKENS", "")
	t.Setenv("ANTHROPIC_MODEL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LISTEN_ADDR", "")

	cfg := Load()

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 2000, cfg.OpenAIMaxTokens)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.AnthropicModel)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, ":8000", cfg.ListenAddr)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_MAX_TOKENS", "4096")
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg := Load()

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 4096, cfg.OpenAIMaxTokens)
	assert.Equal(t, ":9090", cfg.ListenAddr)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("OPENAI_MAX_TOKENS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2000, cfg.OpenAIMaxTokens)
}
