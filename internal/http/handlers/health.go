package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports process and database liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if a.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	a.json(w, code, map[string]string{"status": status})
}
