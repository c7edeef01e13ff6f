// Package orchestrator drives a pipeline run end to end: schedule nodes
// into execution order, create step-run records, walk the schedule
// executing each node against the accumulating context, and persist the
// terminal run state. Approval nodes suspend the run; resuming re-drives
// the same pipeline definition from the top, since this orchestrator makes
// no attempt at exactly-once or resume-from-midpoint execution (see the
// accompanying design notes' Non-goals).
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhavana9635/aic-orchestrator/internal/dag"
	"github.com/bhavana9635/aic-orchestrator/internal/executor"
	"github.com/bhavana9635/aic-orchestrator/internal/pipeline"
	"github.com/bhavana9635/aic-orchestrator/internal/statesync"
	"github.com/bhavana9635/aic-orchestrator/internal/telemetry"
)

// Orchestrator drives pipeline runs using an Executor for per-node
// dispatch and a Sink for state persistence.
type Orchestrator struct {
	executor *executor.Executor
	sink     statesync.Sink
	logger   telemetry.Logger
	tracer   telemetry.Tracer
	metrics  telemetry.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l telemetry.Logger) Option   { return func(o *Orchestrator) { o.logger = l } }
func WithTracer(t telemetry.Tracer) Option   { return func(o *Orchestrator) { o.tracer = t } }
func WithMetrics(m telemetry.Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }

// New constructs an Orchestrator.
func New(exec *executor.Executor, sink statesync.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{executor: exec, sink: sink}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Outcome is the terminal (or suspended) result of a run.
type Outcome struct {
	Status  pipeline.RunStatus
	Outputs pipeline.Context
	Cost    float64
	Tokens  int
	Err     error
}

// Run drives runID's pipeline definition against inputs to completion,
// failure, or an approval suspension point. It is safe to call from a
// detached goroutine: it takes no cancellation signal from the caller's
// request lifecycle, by design (Non-goal: guaranteed cancellation
// propagation for in-flight runs).
func (o *Orchestrator) Run(ctx context.Context, runID string, p pipeline.Pipeline, inputs pipeline.Context) Outcome {
	o.sink.UpdateRunStatus(ctx, runID, map[string]any{
		"status":    string(pipeline.RunStatusRunning),
		"startedAt": nowRFC3339(),
	})

	order, err := dag.Sort(p.Steps)
	if err != nil {
		o.fail(ctx, runID, err)
		return Outcome{Status: pipeline.RunStatusFailed, Err: err}
	}

	nodesByID := pipeline.NodeByID(p.Steps.Nodes)
	stepRunIDs := o.createStepRunRecords(ctx, runID, order, nodesByID, inputs)

	current := inputs.Clone()
	var totalCost float64
	var totalTokens int

	for _, stepID := range order {
		node := nodesByID[stepID]
		stepRunID := stepRunIDs[stepID]

		o.sink.UpdateStepRun(ctx, stepRunID, map[string]any{
			"status":    string(pipeline.StepStatusRunning),
			"startedAt": nowRFC3339(),
		})

		start := time.Now()
		result, err := o.executor.Execute(ctx, node, current, p.Policies)
		latency := time.Since(start).Milliseconds()

		if approval, ok := err.(*executor.ApprovalRequired); ok {
			o.sink.UpdateStepRun(ctx, stepRunID, map[string]any{
				"status": string(pipeline.StepStatusPending),
			})
			o.sink.UpdateRunStatus(ctx, runID, map[string]any{
				"status": string(pipeline.RunStatusNeedsApproval),
			})
			o.sink.CreateApproval(ctx, runID, approval.StepID)
			return Outcome{Status: pipeline.RunStatusNeedsApproval, Outputs: current, Cost: totalCost, Tokens: totalTokens}
		}

		if err != nil {
			o.sink.UpdateStepRun(ctx, stepRunID, map[string]any{
				"status":       string(pipeline.StepStatusFailed),
				"errorMessage": err.Error(),
				"finishedAt":   nowRFC3339(),
				"latencyMs":    latency,
			})
			o.fail(ctx, runID, err)
			return Outcome{Status: pipeline.RunStatusFailed, Err: err}
		}

		totalCost += result.Cost
		stepTokens := result.InputTokens + result.OutputTokens
		totalTokens += stepTokens

		// Accounting keys are reported through cost/tokensUsed and are kept
		// out of the stored step outputs and the downstream context.
		stepOutputs := make(pipeline.Context, len(result.Outputs))
		for k, v := range result.Outputs {
			switch k {
			case "cost", "input_tokens", "output_tokens", "total_tokens", "model":
				continue
			}
			stepOutputs[k] = v
		}

		o.sink.UpdateStepRun(ctx, stepRunID, map[string]any{
			"status":     string(pipeline.StepStatusCompleted),
			"outputs":    stepOutputs,
			"cost":       result.Cost,
			"tokensUsed": stepTokens,
			"latencyMs":  latency,
			"finishedAt": nowRFC3339(),
		})

		current = current.Merge(stepOutputs)
	}

	o.sink.UpdateRunStatus(ctx, runID, map[string]any{
		"status":     string(pipeline.RunStatusCompleted),
		"outputs":    current,
		"cost":       totalCost,
		"tokensUsed": totalTokens,
		"finishedAt": nowRFC3339(),
	})

	return Outcome{Status: pipeline.RunStatusCompleted, Outputs: current, Cost: totalCost, Tokens: totalTokens}
}

// RunAsync launches Run on a detached goroutine using a background context
// derived only from values worth propagating (none, today), matching the
// reference implementation's fire-and-forget background task scheduling.
func (o *Orchestrator) RunAsync(runID string, p pipeline.Pipeline, inputs pipeline.Context) {
	go o.Run(context.Background(), runID, p, inputs)
}

// Resume re-drives p from the top after an approval decision. The
// orchestrator does not track per-step completion across suspension, so a
// resumed run re-executes every node; this is an explicit limitation, not
// an oversight (see Non-goals: no exactly-once step execution guarantee).
func (o *Orchestrator) Resume(runID string, p pipeline.Pipeline, inputs pipeline.Context) {
	o.RunAsync(runID, p, inputs)
}

func (o *Orchestrator) createStepRunRecords(ctx context.Context, runID string, order []string, nodesByID map[string]pipeline.Node, inputs pipeline.Context) map[string]string {
	stepRunIDs := make(map[string]string, len(order))
	for idx, stepID := range order {
		node := nodesByID[stepID]
		var toolUsed string
		if node.Type == pipeline.NodeTypeTool {
			toolUsed, _ = node.Config["tool"].(string)
		}
		id := o.sink.CreateStepRun(ctx, runID, stepID, map[string]any{
			"stepId":     stepID,
			"stepType":   string(node.Type),
			"toolUsed":   toolUsed,
			"status":     string(pipeline.StepStatusPending),
			"orderIndex": idx,
			"inputs":     inputs,
		})
		if id == "" {
			id = pipeline.StepRunID(runID, stepID)
		}
		stepRunIDs[stepID] = id
	}
	return stepRunIDs
}

func (o *Orchestrator) fail(ctx context.Context, runID string, err error) {
	o.sink.UpdateRunStatus(ctx, runID, map[string]any{
		"status":       string(pipeline.RunStatusFailed),
		"errorMessage": err.Error(),
		"finishedAt":   nowRFC3339(),
	})
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewRunID mints a fresh run identifier, used when a caller starts a run
// without supplying its own id.
func NewRunID() string {
	return uuid.NewString()
}
