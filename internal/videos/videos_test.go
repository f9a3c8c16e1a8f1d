package videos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
)

type storageStub struct {
	mu      sync.Mutex
	puts    []string
	data    map[string][]byte
	removed []string
	putErr  error
	rmErr   error
	removeN int
}

func (s *storageStub) Put(_ context.Context, path string, body io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, path)
	if s.putErr != nil {
		return s.putErr
	}
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.data[path] = b
	return nil
}

func (s *storageStub) PublicURL(path string) string {
	return "https://storage.example.com/object/public/videos/" + path
}

func (s *storageStub) Remove(_ context.Context, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeN++
	s.removed = append(s.removed, paths...)
	return s.rmErr
}

func (s *storageStub) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts) + s.removeN
}

// memoryStore is a mutex-guarded map standing in for the catalogue table.
type memoryStore struct {
	mu        sync.Mutex
	videos    map[string]models.Video
	nextID    int
	calls     int
	createErr error
	commits   []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{videos: make(map[string]models.Video)}
}

func (s *memoryStore) Create(_ context.Context, video models.Video) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.createErr != nil {
		return models.Video{}, s.createErr
	}
	s.nextID++
	video.ID = fmt.Sprintf("video-%d", s.nextID)
	video.CreatedAt = time.Now().UTC()
	s.videos[video.ID] = video
	return video, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *memoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var out []models.Video
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (s *memoryStore) Update(_ context.Context, id string, patch models.VideoPatch) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	if patch.Title != nil {
		video.Title = *patch.Title
	}
	if patch.Description != nil {
		video.Description = *patch.Description
	}
	if patch.Duration != nil {
		video.Duration = *patch.Duration
	}
	if patch.IsFree != nil {
		video.IsFree = *patch.IsFree
	}
	s.videos[id] = video
	s.commits = append(s.commits, video.Title)
	return video, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func newTestUploader(storage *storageStub, store *memoryStore) *Uploader {
	uploader := NewUploader(storage, store, UploaderConfig{
		KeyPrefix:            "videos",
		PlaceholderThumbnail: "https://images.example.com/placeholder.jpg",
	})
	uploader.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return uploader
}

func validRequest() UploadRequest {
	return UploadRequest{
		File:        strings.NewReader("mp4-bytes"),
		Filename:    "intro lesson.mp4",
		ContentType: "video/mp4",
		Size:        9,
		Title:       "Intro",
		Description: "First lesson",
		Duration:    "45 min",
		IsFree:      true,
	}
}

func TestUploadPublishesRecord(t *testing.T) {
	storage := &storageStub{}
	store := newMemoryStore()
	uploader := newTestUploader(storage, store)

	var progress []int
	video, err := uploader.Upload(context.Background(), validRequest(), "owner-1", func(p int) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	wantPath := "videos/1700000000000_intro_lesson.mp4"
	if len(storage.puts) != 1 || storage.puts[0] != wantPath {
		t.Fatalf("expected put to %q, got %v", wantPath, storage.puts)
	}
	if string(storage.data[wantPath]) != "mp4-bytes" {
		t.Fatalf("unexpected stored bytes %q", storage.data[wantPath])
	}
	if video.MediaURL != storage.PublicURL(wantPath) {
		t.Fatalf("unexpected media url %q", video.MediaURL)
	}
	if video.ThumbnailURL != "https://images.example.com/placeholder.jpg" {
		t.Fatalf("expected placeholder thumbnail, got %q", video.ThumbnailURL)
	}
	if video.OwnerID != "owner-1" || video.Title != "Intro" || !video.IsFree || video.Duration != "45 min" {
		t.Fatalf("unexpected video: %+v", video)
	}
	if len(progress) != 2 || progress[0] != 0 || progress[1] != 100 {
		t.Fatalf("expected progress [0 100], got %v", progress)
	}
}

func TestUploadValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UploadRequest)
		owner  string
		field  string
	}{
		{name: "missing file", mutate: func(r *UploadRequest) { r.File = nil }, owner: "owner-1", field: "file"},
		{name: "empty file", mutate: func(r *UploadRequest) { r.Size = 0 }, owner: "owner-1", field: "file"},
		{name: "blank title", mutate: func(r *UploadRequest) { r.Title = "   " }, owner: "owner-1", field: "title"},
		{name: "not a video", mutate: func(r *UploadRequest) { r.ContentType = "image/png" }, owner: "owner-1", field: "file"},
		{name: "no owner", mutate: func(*UploadRequest) {}, owner: "", field: "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &storageStub{}
			store := newMemoryStore()
			uploader := newTestUploader(storage, store)

			req := validRequest()
			tt.mutate(&req)

			progressed := false
			_, err := uploader.Upload(context.Background(), req, tt.owner, func(int) { progressed = true })
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var vErr *apperr.ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
			if storage.calls() != 0 || store.calls != 0 {
				t.Fatalf("expected no external calls, storage=%d store=%d", storage.calls(), store.calls)
			}
			if progressed {
				t.Fatal("progress must not be reported for rejected uploads")
			}
		})
	}
}

func TestUploadStorageFailureSkipsInsert(t *testing.T) {
	storage := &storageStub{putErr: errors.New("bucket unavailable")}
	store := newMemoryStore()
	uploader := newTestUploader(storage, store)

	var progress []int
	_, err := uploader.Upload(context.Background(), validRequest(), "owner-1", func(p int) { progress = append(progress, p) })
	if !errors.Is(err, apperr.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no insert after storage failure, got %d store calls", store.calls)
	}
	if len(progress) != 1 || progress[0] != 0 {
		t.Fatalf("expected progress [0], got %v", progress)
	}
}

func TestUploadInsertFailureLeavesOrphan(t *testing.T) {
	storage := &storageStub{}
	store := newMemoryStore()
	store.createErr = errors.New("connection reset")
	uploader := newTestUploader(storage, store)

	_, err := uploader.Upload(context.Background(), validRequest(), "owner-1", nil)
	var pErr *apperr.ProviderError
	if !errors.As(err, &pErr) || pErr.Provider != "database" {
		t.Fatalf("expected database provider error, got %v", err)
	}
	if len(storage.data) != 1 {
		t.Fatalf("expected the stored object to remain, got %d objects", len(storage.data))
	}
	if storage.removeN != 0 {
		t.Fatal("no compensating delete should be attempted")
	}
}

func TestManagerDeleteSurvivesStorageFailure(t *testing.T) {
	storage := &storageStub{rmErr: errors.New("access denied")}
	store := newMemoryStore()
	video, _ := store.Create(context.Background(), models.Video{
		OwnerID:  "owner-1",
		Title:    "Doomed",
		MediaURL: "https://xyz.example.co/storage/v1/object/public/videos/videos/1700000000000_a.mp4",
	})

	manager := NewManager(store, storage)
	if err := manager.Delete(context.Background(), video.ID, video.MediaURL); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(context.Background(), video.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected record to be gone, got %v", err)
	}
	if len(storage.removed) != 1 || storage.removed[0] != "videos/1700000000000_a.mp4" {
		t.Fatalf("expected removal of last two segments, got %v", storage.removed)
	}
}

func TestManagerDeleteMissingRecord(t *testing.T) {
	storage := &storageStub{}
	manager := NewManager(newMemoryStore(), storage)

	if err := manager.Delete(context.Background(), "missing", "https://cdn.example.com/videos/a.mp4"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if storage.removeN != 0 {
		t.Fatal("storage must not be touched when the record is absent")
	}
}

func TestManagerDeleteWithUnusableLocator(t *testing.T) {
	storage := &storageStub{}
	store := newMemoryStore()
	video, _ := store.Create(context.Background(), models.Video{OwnerID: "o", Title: "t", MediaURL: "single"})

	manager := NewManager(store, storage)
	if err := manager.Delete(context.Background(), video.ID, video.MediaURL); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if storage.removeN != 0 {
		t.Fatal("expected removal to be skipped")
	}
}

func TestManagerUpdate(t *testing.T) {
	store := newMemoryStore()
	video, _ := store.Create(context.Background(), models.Video{OwnerID: "o", Title: "Old", MediaURL: "https://cdn.example.com/videos/a.mp4"})
	manager := NewManager(store, &storageStub{})

	title := "  New  "
	paid := false
	updated, err := manager.Update(context.Background(), video.ID, models.VideoPatch{Title: &title, IsFree: &paid})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New" || updated.MediaURL != video.MediaURL {
		t.Fatalf("unexpected update: %+v", updated)
	}

	blank := " "
	if _, err := manager.Update(context.Background(), video.ID, models.VideoPatch{Title: &blank}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	same, err := manager.Update(context.Background(), video.ID, models.VideoPatch{})
	if err != nil || same.Title != "New" {
		t.Fatalf("empty patch should return current record, got %+v %v", same, err)
	}

	if _, err := manager.Update(context.Background(), "missing", models.VideoPatch{Title: &title}); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManagerConcurrentUpdatesLastWriteWins(t *testing.T) {
	store := newMemoryStore()
	video, _ := store.Create(context.Background(), models.Video{OwnerID: "o", Title: "Start"})
	manager := NewManager(store, &storageStub{})

	var wg sync.WaitGroup
	for i, title := range []string{"From A", "From B"} {
		wg.Add(1)
		go func(i int, title string) {
			defer wg.Done()
			if _, err := manager.Update(context.Background(), video.ID, models.VideoPatch{Title: &title}); err != nil {
				t.Errorf("update %d: %v", i, err)
			}
		}(i, title)
	}
	wg.Wait()

	final, err := manager.Get(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(store.commits) != 2 {
		t.Fatalf("expected both writes to commit, got %v", store.commits)
	}
	if last := store.commits[len(store.commits)-1]; final.Title != last {
		t.Fatalf("expected last committed write %q to win, got %q", last, final.Title)
	}
}

func TestManagerStoreFailureIsProviderError(t *testing.T) {
	manager := NewManager(failingStore{}, &storageStub{})
	if _, err := manager.ListByOwner(context.Background(), "o"); !errors.Is(err, apperr.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

type failingStore struct{ Store }

func (failingStore) ListByOwner(context.Context, string) ([]models.Video, error) {
	return nil, errors.New("db down")
}
