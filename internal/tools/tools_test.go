package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhavana9635/aic-orchestrator/internal/llmprovider"
)

func TestWebSearch_FallbackWithoutAPIKey(t *testing.T) {
	tool := NewWebSearchTool("")
	result, err := tool.Search(context.Background(), "golang pipelines", 5)
	require.NoError(t, err)

	assert.Equal(t, true, result["fallback"])
	assert.Equal(t, "golang pipelines", result["query"])
	results := result["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "Result for: golang pipelines", first["title"])
}

func TestCompetitorName_DashSplit(t *testing.T) {
	assert.Equal(t, "Acme", competitorName("Acme - the best widget maker"))
}

func TestCompetitorName_TruncatesWhenNoDash(t *testing.T) {
	long := "this is a very long title with absolutely no dash character present at all here"
	name := competitorName(long)
	assert.LessOrEqual(t, len(name), 50)
}

func TestExtractCompetitors_DedupesAndCaps(t *testing.T) {
	searchResults := map[string]any{
		"results": []any{
			map[string]any{"title": "Acme - widgets", "content": "c1", "url": "https://acme.test"},
			map[string]any{"title": "Acme - again", "content": "c2", "url": "https://acme2.test"},
			map[string]any{"title": "Globex - gadgets", "content": "c3", "url": "https://globex.test"},
		},
	}
	competitors, sources := extractCompetitors(searchResults)
	require.Len(t, competitors, 2)
	require.Len(t, sources, 2)

	many := make([]any, 0, 7)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		many = append(many, map[string]any{"title": name + " - x", "content": "c", "url": "https://" + name + ".test"})
	}
	capped, _ := extractCompetitors(map[string]any{"results": many})
	assert.Len(t, capped, 5)
}

type fakeGenerator struct {
	content string
}

func (f *fakeGenerator) Generate(context.Context, string, llmprovider.Request) (string, llmprovider.Response, error) {
	return "mock", llmprovider.Response{Content: f.content}, nil
}

func TestCompetitorAnalyze_NoLLM(t *testing.T) {
	search := NewWebSearchTool("")
	tool := NewCompetitorAnalysisTool(search, nil)

	result, err := tool.Analyze(context.Background(), "a scheduling app", nil)
	require.NoError(t, err)
	assert.Equal(t, false, result["llm_enhanced"])
	assert.Equal(t, "a scheduling app", result["idea"])
}

func TestCompetitorAnalyze_LLMEnhancedFencedJSON(t *testing.T) {
	search := NewWebSearchTool("")
	searchResults := map[string]any{
		"results": []any{
			map[string]any{"title": "Acme - widgets", "content": "c1", "url": "https://acme.test"},
		},
	}
	gen := &fakeGenerator{content: "intro text\n```json\n{\"competitors\":[{\"name\":\"Acme\"}],\"analysis\":\"solid\"}\n```\ntrailing"}
	tool := NewCompetitorAnalysisTool(search, gen)

	result, err := tool.Analyze(context.Background(), "a scheduling app", searchResults)
	require.NoError(t, err)
	assert.Equal(t, true, result["llm_enhanced"])
	assert.Equal(t, "solid", result["analysis"])
}

func TestRegistry_UnknownTool(t *testing.T) {
	r := NewRegistry("", nil)
	_, err := r.Execute(context.Background(), "nope", nil, nil, nil)
	require.Error(t, err)
	var unknown *UnknownError
	require.ErrorAs(t, err, &unknown)
}

func TestRegistry_DeniedByPolicy(t *testing.T) {
	r := NewRegistry("", nil)
	_, err := r.Execute(context.Background(), "web_search", map[string]any{"query": "x"}, nil, []string{"competitor_analysis"})
	require.Error(t, err)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
}

func TestRegistry_InvalidInput(t *testing.T) {
	r := NewRegistry("", nil)
	_, err := r.Execute(context.Background(), "web_search", map[string]any{}, nil, nil)
	require.Error(t, err)
	var invalid *InputInvalidError
	require.ErrorAs(t, err, &invalid)
}

func TestRegistry_CompetitorAnalysisAcceptsJSONStringSearchResults(t *testing.T) {
	r := NewRegistry("", nil)
	config := map[string]any{
		"idea":          "a scheduling app",
		"searchResults": `{"results":[{"title":"Acme - widgets","content":"c1","url":"https://acme.test"}]}`,
	}
	out, err := r.Execute(context.Background(), "competitor_analysis", config, nil, nil)
	require.NoError(t, err)
	competitors, ok := out["competitors"].([]any)
	require.True(t, ok)
	assert.Len(t, competitors, 1)
}

func TestRegistry_CompetitorAnalysisTreatsUnparsableStringAsAbsent(t *testing.T) {
	r := NewRegistry("", nil)
	config := map[string]any{
		"idea":          "a scheduling app",
		"searchResults": "not json",
	}
	out, err := r.Execute(context.Background(), "competitor_analysis", config, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, false, out["result"].(map[string]any)["llm_enhanced"])
}

func TestRegistry_WebSearchInterpolatesConfig(t *testing.T) {
	r := NewRegistry("", nil)
	inputs := map[string]any{"topic": "golang"}
	out, err := r.Execute(context.Background(), "web_search", map[string]any{"query": "search about {{topic}}"}, inputs, nil)
	require.NoError(t, err)
	assert.Equal(t, "search about golang", out["query"])
}
