package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextMerge(t *testing.T) {
	base := Context{"a": 1, "b": 2}
	merged := base.Merge(Context{"b": 3, "c": 4})

	assert.Equal(t, Context{"a": 1, "b": 3, "c": 4}, merged)
	assert.Equal(t, Context{"a": 1, "b": 2}, base, "Merge must not mutate the receiver")
}

func TestContextClone(t *testing.T) {
	base := Context{"a": 1}
	clone := base.Clone()
	clone["a"] = 2

	assert.Equal(t, 1, base["a"])
	assert.Equal(t, 2, clone["a"])
}

func TestNodeByID(t *testing.T) {
	nodes := []Node{
		{ID: "n1", Type: NodeTypeTool},
		{ID: "n2", Type: NodeTypeAgent},
	}
	byID := NodeByID(nodes)

	require.Len(t, byID, 2)
	assert.Equal(t, NodeTypeTool, byID["n1"].Type)
	assert.Equal(t, NodeTypeAgent, byID["n2"].Type)
}

func TestStepRunID(t *testing.T) {
	assert.Equal(t, "run-1:step:step-a", StepRunID("run-1", "step-a"))
}
