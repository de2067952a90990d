package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

func validateBatchRequest(req domain.BatchRequest) error {
	if strings.TrimSpace(req.ProjectID) == "" {
		return fmt.Errorf("%w: projectId is required", domain.ErrInvalidRequest)
	}
	if req.Year < 1 || req.Month < 1 || req.Month > 12 {
		return fmt.Errorf("%w: year and month (1-12) are required", domain.ErrInvalidRequest)
	}
	return nil
}

// BatchesRun runs a batch and streams its progress as NDJSON, one event per
// line, flushed as each event occurs. Failures after the stream has started
// arrive as an error event rather than an HTTP status.
func (a *App) BatchesRun(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := validateBatchRequest(req); err != nil {
		a.fail(w, r, err)
		return
	}

	logger := infra.OrNop(a.Logger)
	rc := http.NewResponseController(w)
	flush := func() {
		_ = rc.Flush()
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flush()

	stream := pipeline.Stream(r.Context(), a.Batches, req, a.EventBuffer)
	out := pipeline.NewNDJSONWriter(w, flush)
	broken := false
	for ev := range stream.Events() {
		if broken {
			continue
		}
		if err := out.Write(ev); err != nil {
			broken = true
			logger.Warn().Err(err).Str("project_id", req.ProjectID).Msg("http: batch stream write failed")
		}
	}
}

// BatchesEnqueue queues a batch for a background worker.
func (a *App) BatchesEnqueue(w http.ResponseWriter, r *http.Request) {
	if a.Queue == nil {
		a.error(w, http.StatusServiceUnavailable, "queue_unavailable", "batch queue is not configured")
		return
	}
	var req domain.BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := validateBatchRequest(req); err != nil {
		a.fail(w, r, err)
		return
	}
	if _, err := a.Projects.Get(r.Context(), req.ProjectID); err != nil {
		a.fail(w, r, err)
		return
	}
	job, err := a.Queue.Enqueue(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, job)
}
