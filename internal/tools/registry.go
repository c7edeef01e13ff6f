// Package tools implements the pipeline's tool registry: named, policy-
// gated, schema-validated dispatch to concrete tool implementations
// (web search, competitor analysis).
package tools

import (
	"context"
	"encoding/json"

	"github.com/bhavana9635/aic-orchestrator/internal/interp"
)

// handler executes one interpolated tool invocation and returns its result
// envelope.
type handler func(ctx context.Context, config map[string]any) (map[string]any, error)

type registeredTool struct {
	schema  map[string]any
	execute handler
}

// Registry dispatches tool invocations by name, enforcing an allow-list
// policy and JSON-Schema config validation ahead of execution.
type Registry struct {
	tools map[string]registeredTool
}

// NewRegistry constructs a Registry wired to the standard tool set
// (web_search, competitor_analysis). llm may be nil to disable the LLM
// enhancement pass in competitor analysis.
func NewRegistry(tavilyAPIKey string, llm Generator) *Registry {
	search := NewWebSearchTool(tavilyAPIKey)
	competitor := NewCompetitorAnalysisTool(search, llm)

	r := &Registry{tools: make(map[string]registeredTool)}
	r.register("web_search", webSearchSchema, func(ctx context.Context, config map[string]any) (map[string]any, error) {
		query, _ := config["query"].(string)
		maxResults := 5
		if mr, ok := config["max_results"].(float64); ok {
			maxResults = int(mr)
		}
		result, err := search.Search(ctx, query, maxResults)
		if err != nil {
			return nil, err
		}
		sources, _ := result["sources"].([]any)
		return map[string]any{
			"result":  result,
			"query":   query,
			"sources": sources,
		}, nil
	})
	r.register("competitor_analysis", competitorAnalysisSchema, func(ctx context.Context, config map[string]any) (map[string]any, error) {
		idea, _ := config["idea"].(string)
		result, err := competitor.Analyze(ctx, idea, coerceSearchResults(config["searchResults"]))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"result":      result,
			"competitors": result["competitors"],
			"analysis":    result["analysis"],
		}, nil
	})
	return r
}

func (r *Registry) register(name string, schema map[string]any, h handler) {
	r.tools[name] = registeredTool{schema: schema, execute: h}
}

// Execute interpolates config against inputs, validates it against the
// tool's declared schema, checks it against allowedTools, and runs it.
// An empty allowedTools means no restriction.
func (r *Registry) Execute(ctx context.Context, toolName string, config map[string]any, inputs map[string]any, allowedTools []string) (map[string]any, error) {
	tool, ok := r.tools[toolName]
	if !ok {
		return nil, &UnknownError{Tool: toolName}
	}
	if !isAllowed(toolName, allowedTools) {
		return nil, &DeniedError{Tool: toolName}
	}

	interpolated, _ := interp.Value(config, inputs).(map[string]any)
	if err := validateConfig(toolName, tool.schema, interpolated); err != nil {
		return nil, err
	}

	return tool.execute(ctx, interpolated)
}

// coerceSearchResults accepts searchResults as either an already-decoded
// object or a JSON-encoded string (the shape an upstream step's templated
// output commonly takes); a string that fails to parse is treated as absent,
// matching the reference implementation's isinstance(str) branch.
func coerceSearchResults(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(t), &parsed); err != nil {
			return nil
		}
		return parsed
	default:
		return nil
	}
}

func isAllowed(toolName string, allowedTools []string) bool {
	if len(allowedTools) == 0 {
		return true
	}
	for _, t := range allowedTools {
		if t == toolName {
			return true
		}
	}
	return false
}

var webSearchSchema = map[string]any{
	"type":     "object",
	"required": []any{"query"},
	"properties": map[string]any{
		"query":       map[string]any{"type": "string", "minLength": 1},
		"max_results": map[string]any{"type": "number", "minimum": 0},
	},
}

var competitorAnalysisSchema = map[string]any{
	"type":     "object",
	"required": []any{"idea"},
	"properties": map[string]any{
		"idea":          map[string]any{"type": "string", "minLength": 1},
		"searchResults": map[string]any{"type": []any{"object", "string"}},
	},
}
