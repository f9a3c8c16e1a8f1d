package videos

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/models"
)

// Storage is the object store that holds uploaded media.
type Storage interface {
	Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}

// Store persists catalogue records.
type Store interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	Get(ctx context.Context, id string) (models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Update(ctx context.Context, id string, patch models.VideoPatch) (models.Video, error)
	Delete(ctx context.Context, id string) error
}

// UploadRequest carries a media file and the metadata entered alongside it.
type UploadRequest struct {
	File        io.Reader
	Filename    string
	ContentType string
	// Size is the byte length of File, or -1 when unknown.
	Size        int64
	Title       string
	Description string
	Duration    string
	IsFree      bool
}

// Progress receives upload completion percentages.
type Progress func(percent int)

// UploaderConfig controls where media lands and what thumbnail new records get.
type UploaderConfig struct {
	KeyPrefix            string
	PlaceholderThumbnail string
}

// Uploader stores media in object storage and then publishes a catalogue record for it.
type Uploader struct {
	storage Storage
	store   Store
	cfg     UploaderConfig
	now     func() time.Time
}

// NewUploader constructs an Uploader.
func NewUploader(storage Storage, store Store, cfg UploaderConfig) *Uploader {
	return &Uploader{
		storage: storage,
		store:   store,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Upload validates req, writes the file to storage and inserts the record. A
// record insert failure leaves the stored object in place; nothing is rolled back.
// progress, when non-nil, sees 0 once validation passes and 100 once the record exists.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest, ownerID string, progress Progress) (models.Video, error) {
	if err := validateUpload(req, ownerID); err != nil {
		return models.Video{}, err
	}
	if progress == nil {
		progress = func(int) {}
	}

	ctx, span := logging.StartSpan(ctx, "videos.upload")
	defer span.End()
	logger := logging.FromContext(ctx)

	progress(0)

	objectPath := ObjectPath(u.cfg.KeyPrefix, ObjectName(u.now(), req.Filename))
	if err := u.storage.Put(ctx, objectPath, req.File, req.Size, req.ContentType); err != nil {
		logger.Error("store video object", slog.String("path", objectPath), slog.Any("error", err))
		return models.Video{}, apperr.Provider("storage", "put", err)
	}

	video, err := u.store.Create(ctx, models.Video{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		MediaURL:     u.storage.PublicURL(objectPath),
		ThumbnailURL: u.cfg.PlaceholderThumbnail,
		Duration:     strings.TrimSpace(req.Duration),
		IsFree:       req.IsFree,
	})
	if err != nil {
		logger.Error("insert video record; stored object is orphaned",
			slog.String("path", objectPath),
			slog.Any("error", err),
		)
		return models.Video{}, apperr.Provider("database", "insert video", err)
	}

	progress(100)
	logger.Info("video published", slog.String("video_id", video.ID), slog.String("path", objectPath))
	return video, nil
}

func validateUpload(req UploadRequest, ownerID string) error {
	if req.File == nil || req.Size == 0 {
		return apperr.Invalid("file", "a video file is required")
	}
	if contentType := strings.TrimSpace(req.ContentType); contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return apperr.Invalid("file", "only video files can be uploaded")
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperr.Invalid("title", "title is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return apperr.Invalid("owner", "uploader identity is required")
	}
	return nil
}
