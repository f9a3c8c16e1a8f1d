package videos

import (
	"context"
	"log/slog"
	"strings"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/models"
)

// Manager backs the owner's management console: listing, metadata edits and removal.
type Manager struct {
	store   Store
	storage Storage
}

// NewManager constructs a Manager.
func NewManager(store Store, storage Storage) *Manager {
	return &Manager{store: store, storage: storage}
}

// ListByOwner returns the owner's uploads, newest first.
func (m *Manager) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	videos, err := m.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list videos", err)
	}
	return videos, nil
}

// Get returns a single record.
func (m *Manager) Get(ctx context.Context, id string) (models.Video, error) {
	video, err := m.store.Get(ctx, id)
	return video, storeError("get video", err)
}

// Update applies patch to the record's metadata. The media locator cannot be
// changed here. An empty patch returns the current record.
func (m *Manager) Update(ctx context.Context, id string, patch models.VideoPatch) (models.Video, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Video{}, apperr.Invalid("title", "title must not be empty")
		}
		patch.Title = &title
	}
	if patch.Empty() {
		return m.Get(ctx, id)
	}

	video, err := m.store.Update(ctx, id, patch)
	return video, storeError("update video", err)
}

// Delete removes the record, then makes one attempt to remove the media object
// at the path derived from locator. Storage failures are logged and swallowed.
func (m *Manager) Delete(ctx context.Context, id, locator string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return storeError("delete video", err)
	}

	logger := logging.FromContext(ctx).With(slog.String("video_id", id))

	objectPath, err := ObjectPathFromLocator(locator)
	if err != nil {
		logger.Warn("skip media removal", slog.String("locator", locator), slog.Any("error", err))
		return nil
	}

	if err := m.storage.Remove(ctx, objectPath); err != nil {
		logger.Warn("remove video object", slog.String("path", objectPath), slog.Any("error", err))
	}
	return nil
}
