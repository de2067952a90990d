package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"adstudio/internal/domain"
)

type projectRequest struct {
	Name         string `json:"name"`
	MasterPrompt string `json:"masterPrompt"`
}

func (p projectRequest) validate() (string, bool) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.MasterPrompt) == "" {
		return "name and masterPrompt are required", false
	}
	return "", true
}

func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	projects, err := a.Projects.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": projects})
}

func (a *App) ProjectsGet(w http.ResponseWriter, r *http.Request) {
	project, err := a.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, project)
}

func (a *App) ProjectsCreate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if msg, ok := req.validate(); !ok {
		a.error(w, http.StatusBadRequest, "bad_request", msg)
		return
	}
	saved, err := a.Projects.Save(r.Context(), &domain.Project{
		Name:         strings.TrimSpace(req.Name),
		MasterPrompt: strings.TrimSpace(req.MasterPrompt),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, saved)
}

func (a *App) ProjectsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if msg, ok := req.validate(); !ok {
		a.error(w, http.StatusBadRequest, "bad_request", msg)
		return
	}
	existing, err := a.Projects.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	existing.Name = strings.TrimSpace(req.Name)
	existing.MasterPrompt = strings.TrimSpace(req.MasterPrompt)
	saved, err := a.Projects.Save(r.Context(), existing)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, saved)
}

func (a *App) ProjectsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
