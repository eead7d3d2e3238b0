package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"creationhub/internal/domain"
	"creationhub/internal/middleware"
	"creationhub/internal/providers/prompt"
)

type enhanceRequest struct {
	Prompt string `json:"prompt"`
	Medium string `json:"medium"`
	Style  string `json:"style"`
}

type enhanceResponse struct {
	Prompt   string            `json:"prompt"`
	Title    string            `json:"title,omitempty"`
	Keywords []string          `json:"keywords,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PromptEnhance rewrites a raw prompt into a richer one.
func (a *App) PromptEnhance(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := domain.ValidatePrompt(req.Prompt); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_prompt", err.Error())
		return
	}

	res, err := a.Enhancer.Enhance(r.Context(), prompt.EnhanceRequest{
		Prompt: req.Prompt,
		Medium: req.Medium,
		Style:  req.Style,
		Locale: middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.recordPromptUsage(r, userID, false)
		a.error(w, http.StatusBadGateway, "provider_error", "enhancement failed")
		return
	}
	a.recordPromptUsage(r, userID, true)
	a.json(w, http.StatusOK, enhanceResponse{
		Prompt:   res.Prompt,
		Title:    res.Title,
		Keywords: res.Keywords,
		Metadata: res.Metadata,
	})
}

// PromptRandom returns starter prompt ideas.
func (a *App) PromptRandom(w http.ResponseWriter, r *http.Request) {
	items, err := a.Enhancer.Random(r.Context(), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.error(w, http.StatusBadGateway, "provider_error", "idea generation failed")
		return
	}
	out := make([]enhanceResponse, 0, len(items))
	for _, item := range items {
		out = append(out, enhanceResponse{
			Prompt:   item.Prompt,
			Title:    item.Title,
			Keywords: item.Keywords,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

type promptTemplateResponse struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Body        string   `json:"body"`
	Keywords    []string `json:"keywords,omitempty"`
}

// PromptLibrary serves the curated template library, filtered by
// category or free-text query.
func (a *App) PromptLibrary(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var (
		templates []domain.PromptTemplate
		err       error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		templates, err = a.Prompts.Search(r.Context(), q, limit)
	} else {
		category := domain.PromptCategory(r.URL.Query().Get("category"))
		if category == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "category or q required")
			return
		}
		templates, err = a.Prompts.ListByCategory(r.Context(), category, limit)
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load prompt library")
		return
	}

	items := make([]promptTemplateResponse, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, promptTemplateResponse{
			ID:          tpl.ID,
			Category:    string(tpl.Category),
			Title:       tpl.Title,
			Description: tpl.Description,
			Body:        tpl.Body,
			Keywords:    tpl.Keywords,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) recordPromptUsage(r *http.Request, userID string, success bool) {
	if a.Analytics == nil {
		return
	}
	event := domain.UsageEvent{
		UserID:      userID,
		Kind:        domain.UsageKindPromptEnhance,
		Success:     success,
		CountryCode: middleware.CountryFromContext(r.Context()),
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.Analytics.RecordEvent(r.Context(), event); err != nil && a.Logger != nil {
		a.Logger.Warn().Err(err).Msg("record usage event")
	}
}
