package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"adstudio/internal/infra"
	"adstudio/internal/storage"
	"adstudio/pkg/zip"
)

// ArtifactLister finds finished ads on disk.
type ArtifactLister interface {
	MonthArtifacts(projectName string, year int, month time.Month) ([]string, error)
}

// ProjectsArchive downloads one month of finished ads as a zip.
func (a *App) ProjectsArchive(w http.ResponseWriter, r *http.Request) {
	if a.Artifacts == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "artifact store is not configured")
		return
	}
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY != nil || errM != nil || year < 1 || month < 1 || month > 12 {
		a.error(w, http.StatusBadRequest, "bad_request", "year and month (1-12) query parameters are required")
		return
	}
	project, err := a.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	files, err := a.Artifacts.MonthArtifacts(project.Name, year, time.Month(month))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(files) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no ads generated for that month")
		return
	}

	prefix := fmt.Sprintf("%d-%02d", year, month)
	entries := make([]zip.Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, zip.Entry{Name: prefix + "/" + filepath.Base(f), Path: f})
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s.zip"`, storage.ProjectDirName(project.Name), prefix))
	if err := zip.WriteArchive(w, entries); err != nil && r.Context().Err() == nil {
		infra.OrNop(a.Logger).Warn().Err(err).Str("project_id", project.ID).Msg("http: archive stream failed")
	}
}
