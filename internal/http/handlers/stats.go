package handlers

import (
	"net/http"
	"time"
)

// StatsDaily reports aggregated usage for one calendar day. Defaults to
// today (UTC) when no day parameter is given.
func (a *App) StatsDaily(w http.ResponseWriter, r *http.Request) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	day := r.URL.Query().Get("day")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	daily, err := a.Analytics.GetDaily(r.Context(), day)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid day")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"day":             daily.Day.Format("2006-01-02"),
		"imagesGenerated": daily.ImagesGenerated,
		"imagesEdited":    daily.ImagesEdited,
		"videosGenerated": daily.VideosGenerated,
		"promptsEnhanced": daily.PromptsEnhanced,
		"requestSuccess":  daily.RequestSuccess,
		"requestFail":     daily.RequestFail,
		"countries":       daily.Countries,
	})
}
