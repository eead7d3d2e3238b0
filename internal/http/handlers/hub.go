package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"creationhub/internal/domain"
	"creationhub/internal/hub"
	"creationhub/internal/middleware"
)

const maxUploadBytes = 25 << 20

type hubGenerateRequest struct {
	Prompt         string   `json:"prompt"`
	Quality        string   `json:"quality"`
	Size           string   `json:"size"`
	Format         string   `json:"format"`
	Background     string   `json:"background"`
	Compression    int      `json:"compression"`
	Style          string   `json:"style"`
	ConversationID string   `json:"conversationId"`
	Filters        []string `json:"filters"`
}

type imageResponse struct {
	ID             string `json:"id"`
	Prompt         string `json:"prompt"`
	RevisedPrompt  string `json:"revisedPrompt,omitempty"`
	ImageURL       string `json:"imageUrl"`
	Quality        string `json:"quality"`
	Size           string `json:"size"`
	Style          string `json:"style,omitempty"`
	Status         string `json:"status"`
	ConversationID string `json:"conversationId,omitempty"`
	ParentImageID  string `json:"parentImageId,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type hubGenerateResponse struct {
	Data imageResponse `json:"data"`
}

type hubEditResponse struct {
	Success bool          `json:"success"`
	Data    imageResponse `json:"data"`
}

// HubGenerate produces an image from a text prompt.
func (a *App) HubGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req hubGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	img, err := a.Hub.GenerateImage(r.Context(), hub.GenerateParams{
		UserID: userID,
		Prompt: req.Prompt,
		Options: domain.ImageOptions{
			Quality:     req.Quality,
			Size:        req.Size,
			Format:      req.Format,
			Background:  req.Background,
			Compression: req.Compression,
		},
		Style:          req.Style,
		ConversationID: req.ConversationID,
		Filters:        req.Filters,
		CountryCode:    middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.hubError(w, err)
		return
	}
	a.json(w, http.StatusCreated, hubGenerateResponse{Data: toImageResponse(img)})
}

// HubEdit applies an instruction to an uploaded image. The request is
// multipart: an "image" file plus the generation fields.
func (a *App) HubEdit(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
		return
	}
	if len(data) > maxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
		return
	}

	img, err := a.Hub.EditImage(r.Context(), hub.EditParams{
		GenerateParams: hub.GenerateParams{
			UserID: userID,
			Prompt: r.FormValue("prompt"),
			Options: domain.ImageOptions{
				Quality: r.FormValue("quality"),
				Size:    r.FormValue("size"),
				Format:  r.FormValue("format"),
			},
			Style:          r.FormValue("style"),
			ConversationID: r.FormValue("conversationId"),
			CountryCode:    middleware.CountryFromContext(r.Context()),
		},
		ImageData:     data,
		Filename:      header.Filename,
		ParentImageID: r.FormValue("parentImageId"),
	})
	if err != nil {
		a.hubError(w, err)
		return
	}
	a.json(w, http.StatusCreated, hubEditResponse{Success: true, Data: toImageResponse(img)})
}

func (a *App) hubError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPrompt), errors.Is(err, domain.ErrInvalidOption):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "provider_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
	}
}

func toImageResponse(img *domain.GeneratedImage) imageResponse {
	return imageResponse{
		ID:             img.ID,
		Prompt:         img.Prompt,
		RevisedPrompt:  img.RevisedPrompt,
		ImageURL:       img.ImageURL,
		Quality:        img.Quality,
		Size:           img.Size,
		Style:          img.Style,
		Status:         string(img.Status),
		ConversationID: img.ConversationID,
		ParentImageID:  img.ParentImageID,
		CreatedAt:      img.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
