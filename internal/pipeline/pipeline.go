// Package pipeline defines the data model for pipeline definitions and their
// execution records: nodes, edges, policies, runs, and per-step records. The
// types here are the shared vocabulary between the scheduler, executor, and
// orchestrator packages.
package pipeline

import "time"

type (
	// NodeType identifies the kind of work a Node performs.
	NodeType string

	// Node is a single unit of work in a pipeline DAG.
	Node struct {
		// ID uniquely identifies the node within its pipeline.
		ID string `json:"id" yaml:"id"`

		// Type selects the executor used to run this node.
		Type NodeType `json:"type" yaml:"type"`

		// Config carries type-specific configuration. Its shape depends on Type
		// (see the tool/agent/condition/approval config contracts).
		Config map[string]any `json:"config" yaml:"config"`
	}

	// Edge is a dependency reference between two nodes: From must execute
	// before To.
	Edge struct {
		From string `json:"from" yaml:"from"`
		To   string `json:"to" yaml:"to"`
	}

	// Policies carries pipeline-wide execution constraints.
	Policies struct {
		// AllowedTools restricts which tool names tool nodes may invoke. An
		// empty or absent set means unrestricted.
		AllowedTools []string `json:"allowedTools,omitempty" yaml:"allowedTools,omitempty"`
	}

	// Steps is the DAG body of a Pipeline.
	Steps struct {
		Nodes []Node `json:"nodes" yaml:"nodes"`
		Edges []Edge `json:"edges" yaml:"edges"`
	}

	// Pipeline is an immutable DAG definition submitted for execution.
	Pipeline struct {
		Steps    Steps    `json:"steps" yaml:"steps"`
		Policies Policies `json:"policies" yaml:"policies"`
	}

	// Context is the accumulating map of values available for template
	// interpolation. It starts as the run's initial inputs and is shallow-
	// merged with each successful node's output envelope.
	Context map[string]any

	// RunStatus is the lifecycle state of a Run.
	RunStatus string

	// Run is the mutable control record for one pipeline execution. The
	// orchestrator only ever writes the fields listed here; the control
	// plane owns the rest of the record.
	Run struct {
		RunID        string     `json:"runId"`
		Status       RunStatus  `json:"status"`
		StartedAt    *time.Time `json:"startedAt,omitempty"`
		FinishedAt   *time.Time `json:"finishedAt,omitempty"`
		Outputs      Context    `json:"outputs,omitempty"`
		Cost         float64    `json:"cost"`
		TokensUsed   int        `json:"tokensUsed"`
		ErrorMessage string     `json:"errorMessage,omitempty"`
	}

	// StepStatus is the lifecycle state of a StepRun.
	StepStatus string

	// StepRun is the per-node execution record.
	StepRun struct {
		StepID       string     `json:"stepId"`
		StepType     NodeType   `json:"stepType"`
		ToolUsed     string     `json:"toolUsed,omitempty"`
		OrderIndex   int        `json:"orderIndex"`
		Inputs       Context    `json:"inputs"`
		Outputs      Context    `json:"outputs,omitempty"`
		Status       StepStatus `json:"status"`
		Cost         float64    `json:"cost"`
		TokensUsed   int        `json:"tokensUsed"`
		LatencyMs    int64      `json:"latencyMs"`
		StartedAt    *time.Time `json:"startedAt,omitempty"`
		FinishedAt   *time.Time `json:"finishedAt,omitempty"`
		ErrorMessage string     `json:"errorMessage,omitempty"`
	}
)

const (
	NodeTypeTool      NodeType = "tool"
	NodeTypeAgent     NodeType = "agent"
	NodeTypeCondition NodeType = "condition"
	NodeTypeApproval  NodeType = "approval"
)

const (
	RunStatusPending       RunStatus = "pending"
	RunStatusRunning       RunStatus = "running"
	RunStatusCompleted     RunStatus = "completed"
	RunStatusFailed        RunStatus = "failed"
	RunStatusNeedsApproval RunStatus = "needs_approval"
)

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepRunID returns the canonical identity for a step run within a run.
func StepRunID(runID, stepID string) string {
	return runID + ":step:" + stepID
}

// Merge shallow-merges src into the context, with src's keys taking
// precedence, and returns the result. The receiver is not mutated.
func (c Context) Merge(src Context) Context {
	out := make(Context, len(c)+len(src))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the context, suitable for snapshotting into
// a StepRun.Inputs field before the context is mutated further.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// NodeByID builds a lookup map from node id to node for a pipeline's nodes.
func NodeByID(nodes []Node) map[string]Node {
	m := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}
