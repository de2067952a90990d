package handlers

import (
	"net/http"

	"adstudio/internal/domain"
)

// SettingsGet reports which credentials are configured. Key values are never
// returned.
func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	status, err := a.Settings.Status(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}

func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var update domain.SettingsUpdate
	if err := decodeJSON(r, &update); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Settings.Save(r.Context(), update); err != nil {
		a.fail(w, r, err)
		return
	}
	a.SettingsGet(w, r)
}
