package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"creationhub/internal/domain"
	"creationhub/pkg/zip"
)

// GalleryList returns the caller's generated images, newest first.
func (a *App) GalleryList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	images, err := a.Hub.ListImages(r.Context(), domain.ImageFilter{
		UserID:         userID,
		ConversationID: r.URL.Query().Get("conversationId"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}
	items := make([]imageResponse, 0, len(images))
	for i := range images {
		items = append(items, toImageResponse(&images[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GalleryGet returns one image.
func (a *App) GalleryGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	img, err := a.Hub.GetImage(r.Context(), chi.URLParam(r, "image_id"), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "image not found")
		return
	}
	a.json(w, http.StatusOK, toImageResponse(img))
}

// GalleryDelete removes one image.
func (a *App) GalleryDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := a.Hub.DeleteImage(r.Context(), chi.URLParam(r, "image_id"), userID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "image not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GalleryArchive streams the caller's stored images as a zip file.
// Only locally persisted artifacts are included; entries still hosted
// at the vendor are skipped.
func (a *App) GalleryArchive(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	images, err := a.Hub.ListImages(r.Context(), domain.ImageFilter{UserID: userID})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}

	var assets []zip.Asset
	for i := range images {
		img := &images[i]
		key := localStorageKey(img.ImageURL)
		if key == "" || a.Files == nil {
			continue
		}
		data, err := a.Files.Read(r.Context(), key)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Warn().Err(err).Str("image_id", img.ID).Msg("skip archive entry")
			}
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%s%s", img.ID, path.Ext(key)),
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no stored images to archive")
		return
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="creation-hub-images.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// localStorageKey maps a locally served image URL back to its storage
// key. Vendor URLs return "".
func localStorageKey(imageURL string) string {
	const marker = "/files/"
	if idx := strings.Index(imageURL, marker); idx >= 0 {
		return imageURL[idx+len(marker):]
	}
	return ""
}
