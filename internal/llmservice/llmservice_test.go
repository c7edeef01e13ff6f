package llmservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhavana9635/aic-orchestrator/internal/llmprovider"
)

type stubClient struct {
	name string
}

func (s *stubClient) Name() string { return s.name }
func (s *stubClient) Generate(context.Context, llmprovider.Request) (llmprovider.Response, error) {
	return llmprovider.Response{Content: "from " + s.name}, nil
}
func (s *stubClient) CountTokens(text string) int { return len(text) }
func (s *stubClient) CalculateCost(int, int, string) float64 { return 1.5 }

func TestResolve_ExplicitProvider(t *testing.T) {
	svc := New(map[string]llmprovider.Client{"openai": &stubClient{name: "openai"}}, nil)
	c, err := svc.Resolve("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
}

func TestResolve_UnknownProvider(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Resolve("cohere")
	require.Error(t, err)
	pe, ok := llmprovider.AsError(err)
	require.True(t, ok)
	assert.Equal(t, llmprovider.KindUnknown, pe.Kind)
}

func TestResolve_KnownProviderNotConfiguredIsUnavailable(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Resolve("openai")
	require.Error(t, err)
	pe, ok := llmprovider.AsError(err)
	require.True(t, ok)
	assert.Equal(t, llmprovider.KindUnavailable, pe.Kind)
}

func TestResolve_AutoPrefersOpenAIThenAnthropicThenBedrockThenMock(t *testing.T) {
	svc := New(map[string]llmprovider.Client{
		"anthropic": &stubClient{name: "anthropic"},
		"bedrock":   &stubClient{name: "bedrock"},
	}, nil)
	c, err := svc.Resolve("auto")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Name())
}

func TestResolve_AutoFallsBackToMock(t *testing.T) {
	svc := New(nil, nil)
	c, err := svc.Resolve("auto")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())
}

func TestGenerate_ReturnsResolvedProviderName(t *testing.T) {
	svc := New(map[string]llmprovider.Client{"openai": &stubClient{name: "openai"}}, nil)
	name, resp, err := svc.Generate(context.Background(), "openai", llmprovider.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "openai", name)
	assert.Equal(t, "from openai", resp.Content)
}
