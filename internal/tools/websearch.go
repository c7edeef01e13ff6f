package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const tavilySearchURL = "https://api.tavily.com/search"

// WebSearchTool performs a web search via the Tavily search API. When no API
// key is configured it returns a deterministic fallback result instead of
// failing, matching the original implementation's degrade-gracefully
// behavior.
type WebSearchTool struct {
	apiKey string
	http   *http.Client
}

// NewWebSearchTool constructs a WebSearchTool. An empty apiKey puts the tool
// permanently into fallback mode.
func NewWebSearchTool(apiKey string) *WebSearchTool {
	return &WebSearchTool{apiKey: apiKey, http: &http.Client{Timeout: 15 * time.Second}}
}

// Search performs a web search for query, capped at maxResults hits.
func (t *WebSearchTool) Search(ctx context.Context, query string, maxResults int) (map[string]any, error) {
	if t.apiKey == "" {
		return fallbackSearchResult(query), nil
	}

	if maxResults <= 0 {
		maxResults = 5
	}
	body, err := json.Marshal(map[string]any{
		"api_key":       t.apiKey,
		"query":         query,
		"max_results":   maxResults,
		"search_depth":  "advanced",
	})
	if err != nil {
		return nil, fmt.Errorf("web search: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilySearchURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("web search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("web search error: tavily returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("web search error: decode response: %w", err)
	}

	results := make([]any, 0, len(parsed.Results))
	sources := make([]any, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, map[string]any{
			"title":   r.Title,
			"url":     r.URL,
			"content": r.Content,
			"score":   r.Score,
		})
		sources = append(sources, r.URL)
	}

	return map[string]any{
		"results": results,
		"query":   query,
		"sources": sources,
	}, nil
}

// fallbackSearchResult returns the deterministic single-result placeholder
// used when no search credentials are configured.
func fallbackSearchResult(query string) map[string]any {
	return map[string]any{
		"results": []any{
			map[string]any{
				"title":   "Result for: " + query,
				"url":     "https://example.com",
				"content": "Sample content related to " + query,
			},
		},
		"query":    query,
		"fallback": true,
	}
}
