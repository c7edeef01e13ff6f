package statesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStepRunID(t *testing.T) {
	runID, stepID, ok := splitStepRunID("run-1:step:step-a")
	require.True(t, ok)
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, "step-a", stepID)
}

func TestSplitStepRunID_Malformed(t *testing.T) {
	_, _, ok := splitStepRunID("not-the-right-shape")
	assert.False(t, ok)
}

func TestRESTClient_PostForID_ReturnsControlPlaneID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "server-assigned-id"})
	}))
	defer server.Close()

	client := NewRESTClient(server.URL)
	id, err := client.PostForID(context.Background(), "/api/v1/runs/r1/steps", map[string]any{"stepId": "s1"}, restPostTimeout)
	require.NoError(t, err)
	assert.Equal(t, "server-assigned-id", id)
}

func TestRESTClient_PostForID_NonCreatedStatusYieldsEmptyID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL)
	id, err := client.PostForID(context.Background(), "/api/v1/runs/r1/steps", map[string]any{}, restPostTimeout)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestDualSink_CreateStepRun_FallsBackToLocalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := New(NewRESTClient(server.URL), nil, nil)
	id := sink.CreateStepRun(context.Background(), "run-1", "step-a", map[string]any{"stepId": "step-a"})
	assert.Equal(t, "run-1:step:step-a", id)
}

func TestDualSink_UpdateRunStatus_NeverPanicsWithoutRedis(t *testing.T) {
	sink := New(NewRESTClient("http://127.0.0.1:0"), nil, nil)
	assert.NotPanics(t, func() {
		sink.UpdateRunStatus(context.Background(), "run-1", map[string]any{"status": "running"})
	})
}
