package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"creationhub/internal/domain"
	"creationhub/internal/hub"
	"creationhub/internal/infra"
	"creationhub/internal/middleware"
	"creationhub/internal/providers/prompt"
	"creationhub/internal/providers/video"
	"creationhub/internal/statuscache"
	"creationhub/internal/storage"
)

// VideoProvider is the vendor surface the video endpoints depend on.
type VideoProvider interface {
	StartGeneration(ctx context.Context, req video.StartRequest) (string, error)
	TaskStatus(ctx context.Context, taskID string) (*video.StatusResult, error)
}

// Pinger reports backend liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App bundles the handler dependencies. Everything is injected; the
// handlers hold no package-level state.
type App struct {
	Hub       *hub.Service
	Jobs      domain.JobRepository
	Prompts   domain.PromptRepository
	Analytics domain.AnalyticsRepository
	Video     VideoProvider
	Enhancer  prompt.Enhancer
	Status    *statuscache.StatusCache
	Files     *storage.FileStore
	DB        Pinger
	Logger    *infra.Logger
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
