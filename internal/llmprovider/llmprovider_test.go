package llmprovider

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerate_PreviewTruncation(t *testing.T) {
	m := NewMock()
	longPrompt := strings.Repeat("x", 2000)

	resp, err := m.Generate(context.Background(), Request{SystemPrompt: "sys", Prompt: longPrompt})
	require.NoError(t, err)

	assert.Contains(t, resp.Content, "MOCK LLM RESPONSE (no real model was called).")
	assert.Contains(t, resp.Content, "Prompt preview:\n")
	preview := strings.SplitN(resp.Content, "Prompt preview:\n", 2)[1]
	assert.Len(t, preview, 1000)
}

func TestMockCalculateCost_AlwaysZero(t *testing.T) {
	m := NewMock()
	assert.Equal(t, 0.0, m.CalculateCost(1000, 1000, "whatever"))
}

func TestPriceFor_KnownModel(t *testing.T) {
	got := priceFor(openAIPricing, openAIFallbackPricing, "gpt-4o-mini", 1_000_000, 1_000_000)
	assert.InDelta(t, 0.15+0.60, got, 1e-9)
}

func TestPriceFor_UnknownModelFallsBack(t *testing.T) {
	got := priceFor(anthropicPricing, anthropicFallbackPricing, "some-future-model", 1_000_000, 0)
	assert.InDelta(t, anthropicFallbackPricing.inputPer1M, got, 1e-9)
}

func TestErrors_Taxonomy(t *testing.T) {
	err := Unknown("cohere")
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, pe.Kind)

	err = Unavailable("openai", "missing api key")
	pe, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, pe.Kind)
	assert.Contains(t, err.Error(), "missing api key")
}

func TestEstimateTokens_EmptyRequestHasFloor(t *testing.T) {
	assert.Equal(t, 500, estimateTokens(Request{}))
}

func TestEstimateTokens_ScalesWithLength(t *testing.T) {
	short := estimateTokens(Request{Prompt: "hi"})
	long := estimateTokens(Request{Prompt: strings.Repeat("hi", 1000)})
	assert.Less(t, short, long)
}

type fakeClient struct {
	name     string
	err      error
	generate func() Response
}

func (f *fakeClient) Name() string { return f.name }
func (f *fakeClient) Generate(context.Context, Request) (Response, error) {
	if f.err != nil {
		return Response{}, f.err
	}
	return f.generate(), nil
}
func (f *fakeClient) CountTokens(s string) int                 { return len(s) }
func (f *fakeClient) CalculateCost(int, int, string) float64   { return 0 }

func TestAdaptiveRateLimiter_WrapDelegates(t *testing.T) {
	fc := &fakeClient{name: "fake", generate: func() Response { return Response{Content: "ok"} }}
	l := NewAdaptiveRateLimiter(60000, 60000)
	wrapped := l.Wrap(fc)

	resp, err := wrapped.Generate(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "fake", wrapped.Name())
}

func TestAdaptiveRateLimiter_BackoffOnFailure(t *testing.T) {
	fc := &fakeClient{name: "fake", err: Failure("fake", "generate", assertErr{})}
	l := NewAdaptiveRateLimiter(1000, 1000)
	wrapped := l.Wrap(fc)

	before := l.currentTPM
	_, err := wrapped.Generate(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Less(t, l.currentTPM, before)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
