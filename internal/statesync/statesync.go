// Package statesync dual-writes run and step state: an authoritative
// control-plane REST call (best-effort, failures are logged and swallowed)
// plus a Redis shadow copy the control plane can reconcile from later.
package statesync

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhavana9635/aic-orchestrator/internal/telemetry"
)

const (
	runUpdateTTL    = 3600 * time.Second
	stepRunTTL      = 3600 * time.Second
	approvalTTL     = 86400 * time.Second
	restPatchTimeout = 2 * time.Second
	restPostTimeout  = 5 * time.Second
)

// Sink is the interface the orchestrator writes run/step/approval state
// through. A Sink never returns an error that should abort a run: state
// sync degradation is logged, not propagated.
type Sink interface {
	UpdateRunStatus(ctx context.Context, runID string, update map[string]any)
	CreateStepRun(ctx context.Context, runID, stepID string, stepData map[string]any) string
	UpdateStepRun(ctx context.Context, stepRunID string, update map[string]any)
	CreateApproval(ctx context.Context, runID, stepID string)
}

// DualSink writes run and step-run updates to the control-plane REST API and
// mirrors them into Redis with the key layout and TTLs the control plane
// expects to reconcile from. Step-run creation goes to REST only, and
// approval markers go to Redis only.
type DualSink struct {
	rest   *RESTClient
	redis  *redis.Client
	logger telemetry.Logger
}

// New constructs a DualSink. logger may be nil, in which case state-sync
// degradation is silently swallowed, matching the reference implementation.
func New(rest *RESTClient, redisClient *redis.Client, logger telemetry.Logger) *DualSink {
	return &DualSink{rest: rest, redis: redisClient, logger: logger}
}

func (s *DualSink) UpdateRunStatus(ctx context.Context, runID string, update map[string]any) {
	body, err := json.Marshal(update)
	if err != nil {
		s.warn(ctx, "marshal run update failed", "runId", runID, "error", err)
		return
	}
	s.set(ctx, "run:update:"+runID, body, runUpdateTTL)

	if err := s.rest.Patch(ctx, "/api/v1/runs/"+runID+"/status", update, restPatchTimeout); err != nil {
		s.warn(ctx, "control plane run status update failed, Redis shadow is authoritative", "runId", runID, "error", err)
	}
}

func (s *DualSink) CreateStepRun(ctx context.Context, runID, stepID string, stepData map[string]any) string {
	fallbackID := runID + ":step:" + stepID

	id, err := s.rest.PostForID(ctx, "/api/v1/runs/"+runID+"/steps", stepData, restPostTimeout)
	if err != nil {
		s.warn(ctx, "control plane step run creation failed, using local id", "runId", runID, "stepId", stepID, "error", err)
		return fallbackID
	}
	if id == "" {
		return fallbackID
	}
	return id
}

func (s *DualSink) UpdateStepRun(ctx context.Context, stepRunID string, update map[string]any) {
	body, err := json.Marshal(update)
	if err != nil {
		s.warn(ctx, "marshal step run update failed", "stepRunId", stepRunID, "error", err)
		return
	}
	s.set(ctx, "step_run:"+stepRunID, body, stepRunTTL)

	runID, stepID, ok := splitStepRunID(stepRunID)
	if !ok {
		return
	}
	if err := s.rest.Patch(ctx, "/api/v1/runs/"+runID+"/steps/"+stepID, update, restPatchTimeout); err != nil {
		s.warn(ctx, "control plane step run update failed, Redis shadow is authoritative", "stepRunId", stepRunID, "error", err)
	}
}

func (s *DualSink) CreateApproval(ctx context.Context, runID, stepID string) {
	body, _ := json.Marshal(map[string]any{"decision": "pending"})
	s.set(ctx, "approval:"+runID+":"+stepID, body, approvalTTL)
}

func (s *DualSink) set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, body, ttl).Err(); err != nil {
		s.warn(ctx, "redis shadow write failed", "key", key, "error", err)
	}
}

func (s *DualSink) warn(ctx context.Context, msg string, keyvals ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(ctx, "state sync degraded: "+msg, keyvals...)
}

// splitStepRunID parses the "{runId}:step:{stepId}" format produced by
// CreateStepRun's fallback path.
func splitStepRunID(stepRunID string) (runID, stepID string, ok bool) {
	const sep = ":step:"
	idx := strings.Index(stepRunID, sep)
	if idx == -1 {
		return "", "", false
	}
	return stepRunID[:idx], stepRunID[idx+len(sep):], true
}
