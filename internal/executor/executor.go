// Package executor dispatches a single pipeline node to the handler for its
// type (tool, agent, condition, approval), namespacing outputs and
// interpolating templates against the run's accumulated context.
package executor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bhavana9635/aic-orchestrator/internal/interp"
	"github.com/bhavana9635/aic-orchestrator/internal/llmprovider"
	"github.com/bhavana9635/aic-orchestrator/internal/llmservice"
	"github.com/bhavana9635/aic-orchestrator/internal/pipeline"
	"github.com/bhavana9635/aic-orchestrator/internal/tools"
)

// ConditionEvaluator decides whether a condition node's branch is taken.
// The default implementation always returns true, matching the reference
// implementation's placeholder behavior; a real expression evaluator can be
// substituted via WithConditionEvaluator.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, condition string, inputs pipeline.Context) (bool, error)
}

// AlwaysTrueEvaluator is the default ConditionEvaluator.
type AlwaysTrueEvaluator struct{}

func (AlwaysTrueEvaluator) Evaluate(context.Context, string, pipeline.Context) (bool, error) {
	return true, nil
}

// Option configures an Executor.
type Option func(*Executor)

// WithConditionEvaluator overrides the default always-true condition
// evaluator.
func WithConditionEvaluator(e ConditionEvaluator) Option {
	return func(x *Executor) { x.conditions = e }
}

// Executor runs individual pipeline nodes against an accumulating context.
type Executor struct {
	llm        *llmservice.Service
	tools      *tools.Registry
	conditions ConditionEvaluator
}

// New constructs an Executor. llm and toolRegistry must be non-nil.
func New(llm *llmservice.Service, toolRegistry *tools.Registry, opts ...Option) *Executor {
	x := &Executor{llm: llm, tools: toolRegistry, conditions: AlwaysTrueEvaluator{}}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Result is the outcome of executing one node: an output envelope merged
// into the run context, plus accounting figures for agent nodes (zero for
// every other node type).
type Result struct {
	Outputs      pipeline.Context
	InputTokens  int
	OutputTokens int
	Cost         float64
	Model        string
	ToolUsed     string
}

// Execute runs node against inputs (the run context snapshot at dispatch
// time) under policies. It returns *ApprovalRequired for approval nodes,
// *ToolFailureError for tool failures, and *StepFailedError for every other
// failure.
func (x *Executor) Execute(ctx context.Context, node pipeline.Node, inputs pipeline.Context, policies pipeline.Policies) (Result, error) {
	switch node.Type {
	case pipeline.NodeTypeTool:
		return x.executeTool(ctx, node, inputs, policies)
	case pipeline.NodeTypeAgent:
		return x.executeAgent(ctx, node, inputs)
	case pipeline.NodeTypeCondition:
		return x.executeCondition(ctx, node, inputs)
	case pipeline.NodeTypeApproval:
		return Result{}, &ApprovalRequired{StepID: node.ID}
	default:
		return Result{}, &StepFailedError{StepID: node.ID, Cause: unknownStepTypeError(node.Type)}
	}
}

func (x *Executor) executeTool(ctx context.Context, node pipeline.Node, inputs pipeline.Context, policies pipeline.Policies) (Result, error) {
	toolName, _ := node.Config["tool"].(string)
	if toolName == "" {
		toolName = node.ID
	}

	raw, err := x.tools.Execute(ctx, toolName, node.Config, inputs, policies.AllowedTools)
	if err != nil {
		return Result{}, &ToolFailureError{StepID: node.ID, Cause: err}
	}

	return Result{Outputs: namespace(node.ID, raw), ToolUsed: toolName}, nil
}

func (x *Executor) executeAgent(ctx context.Context, node pipeline.Node, inputs pipeline.Context) (Result, error) {
	promptTemplate, _ := node.Config["prompt"].(string)
	if promptTemplate == "" {
		promptTemplate = "Analyze the input"
	}
	prompt := interp.String(promptTemplate, inputs)

	provider, _ := node.Config["provider"].(string)
	if provider == "" {
		provider = "auto"
	}
	model, _ := node.Config["model"].(string)
	systemPrompt, _ := node.Config["system_prompt"].(string)
	temperature := 0.7
	if t, ok := node.Config["temperature"].(float64); ok {
		temperature = t
	}
	maxTokens := 0
	if mt, ok := node.Config["max_tokens"].(float64); ok {
		maxTokens = int(mt)
	}

	resolvedProvider, resp, err := x.llm.Generate(ctx, provider, llmprovider.Request{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Model:        model,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		return Result{}, &StepFailedError{StepID: node.ID, Cause: err}
	}

	cost := x.llm.Cost(resolvedProvider, resp.InputTokens, resp.OutputTokens, resp.Model)

	outputs := pipeline.Context{
		"content":       resp.Content,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
		"total_tokens":  resp.InputTokens + resp.OutputTokens,
		"cost":          cost,
		"model":         resp.Model,
	}
	outputs[node.ID+"_output"] = agentOutputValue(resp.Content)

	return Result{
		Outputs:      outputs,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Cost:         cost,
		Model:        resp.Model,
	}, nil
}

// agentOutputValue parses content as JSON when it looks like a JSON object
// or array, returning the parsed structure; otherwise it returns content
// unchanged.
func agentOutputValue(content string) any {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return content
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return content
	}
	return parsed
}

func (x *Executor) executeCondition(ctx context.Context, node pipeline.Node, inputs pipeline.Context) (Result, error) {
	condition, _ := node.Config["condition"].(string)
	if condition == "" {
		condition = "true"
	}
	result, err := x.conditions.Evaluate(ctx, condition, inputs)
	if err != nil {
		return Result{}, &StepFailedError{StepID: node.ID, Cause: err}
	}
	return Result{Outputs: pipeline.Context{
		"condition_result": result,
		"condition":        condition,
	}}, nil
}

// namespace prefixes every key in raw with "{nodeID}_" unless it already
// carries that prefix, matching the reference implementation's
// tool-output-collision-avoidance scheme.
func namespace(nodeID string, raw map[string]any) pipeline.Context {
	out := make(pipeline.Context, len(raw))
	prefix := nodeID + "_"
	for k, v := range raw {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
			continue
		}
		out[prefix+k] = v
	}
	return out
}

type unknownStepTypeError pipeline.NodeType

func (e unknownStepTypeError) Error() string {
	return "unknown step type: " + string(e)
}
