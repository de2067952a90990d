package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

// SettingsStore reads and updates provider credentials.
type SettingsStore interface {
	Status(ctx context.Context) (domain.SettingsStatus, error)
	Save(ctx context.Context, update domain.SettingsUpdate) error
}

// BatchQueue hands batches to background workers.
type BatchQueue interface {
	Enqueue(ctx context.Context, req domain.BatchRequest) (pipeline.QueuedBatch, error)
}

const maxBodyBytes = 1 << 20

type App struct {
	Projects    domain.ProjectRepository
	Settings    SettingsStore
	Batches     pipeline.BatchRunner
	Queue       BatchQueue
	Artifacts   ArtifactLister
	EventBuffer int
	Logger      *infra.Logger
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// fail maps domain errors onto HTTP statuses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound), errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrMissingCredential):
		a.error(w, http.StatusBadRequest, "missing_credential", err.Error())
	case errors.Is(err, domain.ErrBatchInProgress):
		a.error(w, http.StatusConflict, "batch_in_progress", err.Error())
	default:
		infra.OrNop(a.Logger).Error().Err(err).Str("path", r.URL.Path).Msg("http: request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
