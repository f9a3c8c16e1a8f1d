package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/videos"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file.
const multipartMemory = 32 << 20

// VideoHandler provides the admin endpoints for uploading and managing videos.
type VideoHandler struct {
	Uploads        VideoUploader
	Videos         VideoManager
	MaxUploadBytes int64
}

// Upload handles POST /api/admin/videos (multipart form).
func (h VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(ctx, w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		logger.Warn("invalid upload form", "error", err)
		respondMessage(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := videos.UploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Duration:    r.FormValue("duration"),
		Size:        -1,
	}

	if raw := strings.TrimSpace(r.FormValue("isFree")); raw != "" {
		isFree, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, w, apperr.Invalid("isFree", "isFree must be true or false"), "")
			return
		}
		req.IsFree = isFree
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.File = file
		req.Filename = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.Size = header.Size
	case errors.Is(err, http.ErrMissingFile):
	default:
		logger.Warn("read upload file", "error", err)
		respondMessage(ctx, w, http.StatusBadRequest, "invalid file part")
		return
	}

	progress := func(percent int) {
		logger.Debug("upload progress", slog.Int("percent", percent))
	}

	video, err := h.Uploads.Upload(ctx, req, viewerID(r), progress)
	if err != nil {
		respondError(ctx, w, err, "upload failed, please try again")
		return
	}
	respondJSON(ctx, w, http.StatusCreated, video)
}

// List handles GET /api/admin/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.Videos.ListByOwner(ctx, viewerID(r))
	if err != nil {
		respondError(ctx, w, err, "unable to load videos")
		return
	}
	if list == nil {
		list = []models.Video{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": list})
}

// Update handles PATCH /api/admin/videos/{id}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var patch models.VideoPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.owned(r, id); err != nil {
		respondError(ctx, w, err, "unable to update video")
		return
	}

	video, err := h.Videos.Update(ctx, id, patch)
	if err != nil {
		respondError(ctx, w, err, "unable to update video")
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /api/admin/videos/{id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	video, err := h.owned(r, id)
	if err != nil {
		respondError(ctx, w, err, "unable to delete video")
		return
	}

	if err := h.Videos.Delete(ctx, id, video.MediaURL); err != nil {
		respondError(ctx, w, err, "unable to delete video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h VideoHandler) owned(r *http.Request, id string) (models.Video, error) {
	video, err := h.Videos.Get(r.Context(), id)
	if err != nil {
		return models.Video{}, err
	}
	if video.OwnerID != viewerID(r) {
		return models.Video{}, errForbidden
	}
	return video, nil
}

func viewerID(r *http.Request) string {
	if viewer := auth.IdentityFromContext(r.Context()); viewer != nil {
		return viewer.ID
	}
	return ""
}
