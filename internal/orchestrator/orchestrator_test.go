package orchestrator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhavana9635/aic-orchestrator/internal/executor"
	"github.com/bhavana9635/aic-orchestrator/internal/llmservice"
	"github.com/bhavana9635/aic-orchestrator/internal/pipeline"
	"github.com/bhavana9635/aic-orchestrator/internal/tools"
)

type fakeSink struct {
	mu          sync.Mutex
	runUpdates  []map[string]any
	stepUpdates []map[string]any
	approvals   []string
}

func (f *fakeSink) UpdateRunStatus(_ context.Context, _ string, update map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runUpdates = append(f.runUpdates, update)
}

func (f *fakeSink) CreateStepRun(_ context.Context, runID, stepID string, _ map[string]any) string {
	return runID + ":step:" + stepID
}

func (f *fakeSink) UpdateStepRun(_ context.Context, _ string, update map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stepUpdates = append(f.stepUpdates, update)
}

func (f *fakeSink) CreateApproval(_ context.Context, runID, stepID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approvals = append(f.approvals, runID+":"+stepID)
}

func (f *fakeSink) lastRunStatus() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.runUpdates) == 0 {
		return ""
	}
	s, _ := f.runUpdates[len(f.runUpdates)-1]["status"].(string)
	return s
}

func newTestOrchestrator() (*Orchestrator, *fakeSink) {
	llm := llmservice.New(nil, nil)
	registry := tools.NewRegistry("", nil)
	exec := executor.New(llm, registry)
	sink := &fakeSink{}
	return New(exec, sink), sink
}

func TestRun_LinearPipelineCompletes(t *testing.T) {
	o, sink := newTestOrchestrator()
	p := pipeline.Pipeline{
		Steps: pipeline.Steps{
			Nodes: []pipeline.Node{
				{ID: "ask", Type: pipeline.NodeTypeAgent, Config: map[string]any{"provider": "mock", "prompt": "hi {{topic}}"}},
			},
		},
	}
	outcome := o.Run(context.Background(), "run-1", p, pipeline.Context{"topic": "golang"})
	require.NoError(t, outcome.Err)
	assert.Equal(t, pipeline.RunStatusCompleted, outcome.Status)
	assert.Equal(t, string(pipeline.RunStatusCompleted), sink.lastRunStatus())
}

func TestRun_MalformedPipelineFails(t *testing.T) {
	o, sink := newTestOrchestrator()
	p := pipeline.Pipeline{
		Steps: pipeline.Steps{
			Nodes: []pipeline.Node{{ID: "a", Type: pipeline.NodeTypeAgent}},
			Edges: []pipeline.Edge{{From: "a", To: "ghost"}},
		},
	}
	outcome := o.Run(context.Background(), "run-2", p, pipeline.Context{})
	require.Error(t, outcome.Err)
	assert.Equal(t, pipeline.RunStatusFailed, outcome.Status)
	assert.Equal(t, string(pipeline.RunStatusFailed), sink.lastRunStatus())
}

func TestRun_ApprovalNodeSuspends(t *testing.T) {
	o, sink := newTestOrchestrator()
	p := pipeline.Pipeline{
		Steps: pipeline.Steps{
			Nodes: []pipeline.Node{
				{ID: "gate", Type: pipeline.NodeTypeApproval},
			},
		},
	}
	outcome := o.Run(context.Background(), "run-3", p, pipeline.Context{})
	require.NoError(t, outcome.Err)
	assert.Equal(t, pipeline.RunStatusNeedsApproval, outcome.Status)
	assert.Equal(t, string(pipeline.RunStatusNeedsApproval), sink.lastRunStatus())
	require.Len(t, sink.approvals, 1)
	assert.Equal(t, "run-3:gate", sink.approvals[0])
}

func TestRun_ToolStepFailurePropagatesAndFailsRun(t *testing.T) {
	o, sink := newTestOrchestrator()
	p := pipeline.Pipeline{
		Steps: pipeline.Steps{
			Nodes: []pipeline.Node{
				{ID: "search1", Type: pipeline.NodeTypeTool, Config: map[string]any{"tool": "does_not_exist"}},
			},
		},
	}
	outcome := o.Run(context.Background(), "run-4", p, pipeline.Context{})
	require.Error(t, outcome.Err)
	assert.Equal(t, pipeline.RunStatusFailed, outcome.Status)
	assert.Equal(t, string(pipeline.RunStatusFailed), sink.lastRunStatus())
}
