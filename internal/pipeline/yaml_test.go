package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_ParsesYAMLPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	const doc = `
steps:
  nodes:
    - id: ask
      type: agent
      config:
        provider: mock
        prompt: "hi {{topic}}"
  edges: []
policies:
  allowedTools: ["web_search"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, p.Steps.Nodes, 1)
	require.Equal(t, "ask", p.Steps.Nodes[0].ID)
	require.Equal(t, NodeTypeAgent, p.Steps.Nodes[0].Type)
	require.Equal(t, []string{"web_search"}, p.Policies.AllowedTools)
}

func TestLoadFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
