package handlers

import (
	"net/http"

	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/catalog"
)

// CatalogHandler serves the public catalogue.
type CatalogHandler struct {
	Catalog CatalogRenderer
}

// List handles GET /api/videos.
func (h CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.Catalog.List(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err, "unable to load videos")
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": entries})
}

// Watch handles GET /api/videos/{id}. Viewers who must sign in get a 401
// carrying the decision so the client can render the login prompt.
func (h CatalogHandler) Watch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	watch, err := h.Catalog.Watch(ctx, r.PathValue("id"), auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err, "unable to load video")
		return
	}
	if watch.Decision != catalog.Allow {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]any{
			"error":    "sign in to watch this video",
			"decision": watch.Decision,
		})
		return
	}
	respondJSON(ctx, w, http.StatusOK, watch)
}
