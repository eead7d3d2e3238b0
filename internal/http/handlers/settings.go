package handlers

import (
	"encoding/json"
	"net/http"

	"creationhub/internal/domain"
)

// SettingsGet returns the current hub settings.
func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	a.json(w, http.StatusOK, a.Hub.Settings())
}

// SettingsUpdate replaces the hub settings. Unknown or out-of-range
// values are normalized back to defaults rather than rejected.
func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var next domain.HubSettings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	updated, err := a.Hub.UpdateSettings(next)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save settings")
		return
	}
	a.json(w, http.StatusOK, updated)
}
