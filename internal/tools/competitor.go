package tools

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/bhavana9635/aic-orchestrator/internal/llmprovider"
)

// Generator is the subset of internal/llmservice.Service used to optionally
// enhance a competitor analysis with an LLM pass. It is an interface so
// tests can substitute a fake without constructing a real service.
type Generator interface {
	Generate(ctx context.Context, providerName string, req llmprovider.Request) (string, llmprovider.Response, error)
}

var fencedJSONBlock = regexp.MustCompile(`(?s)` + "```(?:json)?\\s*(\\{.*?\\})\\s*```")

// CompetitorAnalysisTool extracts competitor names from search results and,
// when an LLM generator is available, asks it to refine the analysis into
// structured competitors + narrative.
type CompetitorAnalysisTool struct {
	search *WebSearchTool
	llm    Generator
}

// NewCompetitorAnalysisTool constructs a CompetitorAnalysisTool. llm may be
// nil, in which case the tool returns the heuristic extraction only.
func NewCompetitorAnalysisTool(search *WebSearchTool, llm Generator) *CompetitorAnalysisTool {
	return &CompetitorAnalysisTool{search: search, llm: llm}
}

// Analyze extracts competitor information for idea from searchResults (or
// performs a fresh search when searchResults is nil), optionally enhancing
// the result with an LLM pass.
func (t *CompetitorAnalysisTool) Analyze(ctx context.Context, idea string, searchResults map[string]any) (map[string]any, error) {
	if searchResults == nil {
		query := idea + " competitors alternatives market analysis"
		res, err := t.search.Search(ctx, query, 10)
		if err != nil {
			return nil, err
		}
		searchResults = res
	}

	competitors, sources := extractCompetitors(searchResults)

	if t.llm != nil && len(competitors) > 0 {
		if enhanced, ok := t.enhance(ctx, idea, competitors, sources); ok {
			return enhanced, nil
		}
	}

	return map[string]any{
		"idea":         idea,
		"competitors":  competitors,
		"sources":      sources,
		"llm_enhanced": false,
	}, nil
}

func extractCompetitors(searchResults map[string]any) ([]any, []any) {
	rawResults, _ := searchResults["results"].([]any)
	competitors := make([]any, 0, len(rawResults))
	sources := make([]any, 0, len(rawResults))
	seen := make(map[string]bool)

	limit := len(rawResults)
	if limit > 5 {
		limit = 5
	}
	for _, raw := range rawResults[:limit] {
		result, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		title, _ := result["title"].(string)
		content, _ := result["content"].(string)
		url, _ := result["url"].(string)

		name := competitorName(title)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		desc := content
		if len(desc) > 200 {
			desc = desc[:200]
		}
		competitors = append(competitors, map[string]any{
			"name":        name,
			"description": desc,
			"source":      url,
		})
		sources = append(sources, url)
	}
	return competitors, sources
}

// competitorName derives a competitor name from a search result title: the
// text before the first '-', or the first 50 characters when there is none.
func competitorName(title string) string {
	if idx := strings.Index(title, "-"); idx != -1 {
		return strings.TrimSpace(title[:idx])
	}
	if len(title) > 50 {
		return title[:50]
	}
	return title
}

func (t *CompetitorAnalysisTool) enhance(ctx context.Context, idea string, competitors, sources []any) (map[string]any, bool) {
	competitorsJSON, err := json.MarshalIndent(competitors, "", "  ")
	if err != nil {
		return nil, false
	}

	prompt := "Analyze the following startup idea and its competitors:\n\n" +
		"Idea: " + idea + "\n\n" +
		"Competitors found:\n" + string(competitorsJSON) + "\n\n" +
		"Provide a structured competitor analysis with:\n" +
		"1. Direct competitors (products solving the same problem)\n" +
		"2. Indirect competitors (alternative solutions)\n" +
		"3. Market gaps and opportunities\n\n" +
		"Format the response as JSON with competitors array and analysis."

	_, resp, err := t.llm.Generate(ctx, "auto", llmprovider.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a competitive intelligence analyst. Provide structured, actionable insights.",
		MaxTokens:    2000,
		Temperature:  0.7,
	})
	if err != nil {
		return nil, false
	}

	result := map[string]any{
		"idea":         idea,
		"competitors":  competitors,
		"analysis":     resp.Content,
		"sources":      sources,
		"llm_enhanced": true,
	}

	if match := fencedJSONBlock.FindStringSubmatch(resp.Content); match != nil {
		var parsed struct {
			Competitors any `json:"competitors"`
			Analysis    any `json:"analysis"`
		}
		if err := json.Unmarshal([]byte(match[1]), &parsed); err == nil {
			if parsed.Competitors != nil {
				result["competitors"] = parsed.Competitors
			}
			if parsed.Analysis != nil {
				result["analysis"] = parsed.Analysis
			}
		}
	}

	return result, true
}
