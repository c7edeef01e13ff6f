// Package httpapi exposes the orchestrator's HTTP surface: health check,
// start/resume run triggers, and a status lookup backed by the Redis
// shadow state. Routing is plain net/http; there is no code-generated
// transport layer in this module.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/bhavana9635/aic-orchestrator/internal/orchestrator"
	"github.com/bhavana9635/aic-orchestrator/internal/pipeline"
	"github.com/bhavana9635/aic-orchestrator/internal/telemetry"
)

// Handler wires the orchestrator and status store to a request router.
type Handler struct {
	orchestrator *orchestrator.Orchestrator
	status       *redis.Client
	logger       telemetry.Logger
}

// New constructs a Handler. status may be nil, in which case /status always
// reports "unknown", matching the reference behavior for a missing key.
func New(o *orchestrator.Orchestrator, status *redis.Client, logger telemetry.Logger) *Handler {
	return &Handler{orchestrator: o, status: status, logger: logger}
}

// Routes returns a ServeMux with every endpoint registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /runs/{runId}/start", h.handleStart)
	mux.HandleFunc("POST /runs/{runId}/resume", h.handleResume)
	mux.HandleFunc("GET /runs/{runId}/status", h.handleStatus)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "aic-orchestrator"})
}

type startRequest struct {
	Pipeline *pipeline.Pipeline `json:"pipeline"`
	Inputs   map[string]any     `json:"inputs"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pipeline == nil || req.Inputs == nil {
		writeError(w, http.StatusBadRequest, "Missing pipeline or inputs")
		return
	}

	h.orchestrator.RunAsync(runID, *req.Pipeline, pipeline.Context(req.Inputs))

	writeJSON(w, http.StatusOK, map[string]any{"status": "accepted", "runId": runID, "message": "Run started"})
}

type resumeRequest struct {
	Pipeline *pipeline.Pipeline `json:"pipeline"`
	Inputs   map[string]any     `json:"inputs"`
	Decision string             `json:"decision"`
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pipeline == nil || req.Inputs == nil {
		writeError(w, http.StatusBadRequest, "Missing pipeline or inputs")
		return
	}
	if req.Decision != "approved" {
		writeError(w, http.StatusBadRequest, "Run not approved")
		return
	}

	h.orchestrator.Resume(runID, *req.Pipeline, pipeline.Context(req.Inputs))

	writeJSON(w, http.StatusOK, map[string]any{"status": "resumed", "runId": runID, "message": "Run resumed"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")

	if h.status == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "unknown"})
		return
	}

	raw, err := h.status.Get(context.Background(), "run:update:"+runID).Result()
	if err == redis.Nil || err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "unknown"})
		return
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "unknown"})
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
