package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
	"github.com/learnhub/backend/internal/videos"
)

type uploaderStub struct {
	got     videos.UploadRequest
	content []byte
	owner   string
}

func (u *uploaderStub) Upload(_ context.Context, req videos.UploadRequest, ownerID string, progress videos.Progress) (models.Video, error) {
	if req.File == nil {
		return models.Video{}, apperr.Invalid("file", "a video file is required")
	}
	u.got = req
	u.owner = ownerID
	u.content, _ = io.ReadAll(req.File)
	progress(0)
	progress(100)
	return models.Video{ID: "v-new", OwnerID: ownerID, Title: req.Title, IsFree: req.IsFree}, nil
}

type videoManagerStub struct {
	videos        map[string]models.Video
	updated       models.VideoPatch
	deletedID     string
	deletedLocate string
}

func (m *videoManagerStub) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	var out []models.Video
	for _, v := range m.videos {
		if v.OwnerID == ownerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *videoManagerStub) Get(_ context.Context, id string) (models.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return v, nil
}

func (m *videoManagerStub) Update(_ context.Context, id string, patch models.VideoPatch) (models.Video, error) {
	m.updated = patch
	v := m.videos[id]
	if patch.Title != nil {
		v.Title = *patch.Title
	}
	return v, nil
}

func (m *videoManagerStub) Delete(_ context.Context, id, locator string) error {
	m.deletedID = id
	m.deletedLocate = locator
	return nil
}

func videoServer(up *uploaderStub, mgr *videoManagerStub) http.Handler {
	return newTestServer(Dependencies{Uploads: up, Videos: mgr, MaxUploadBytes: 1 << 20}, testVerifier())
}

func multipartUpload(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withFile {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="lesson 1.mp4"`)
		header.Set("Content-Type", "video/mp4")
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write([]byte("fake video bytes"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestVideoUpload(t *testing.T) {
	up := &uploaderStub{}
	srv := videoServer(up, &videoManagerStub{})

	body, contentType := multipartUpload(t, map[string]string{"title": "Lesson 1", "isFree": "true", "duration": "45 min"}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token-alice")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if up.owner != alice.ID {
		t.Fatalf("expected owner %s, got %s", alice.ID, up.owner)
	}
	if up.got.Filename != "lesson 1.mp4" || up.got.ContentType != "video/mp4" || !up.got.IsFree || up.got.Duration != "45 min" {
		t.Fatalf("unexpected upload request %+v", up.got)
	}
	if string(up.content) != "fake video bytes" || up.got.Size != int64(len("fake video bytes")) {
		t.Fatalf("unexpected file content %q size %d", up.content, up.got.Size)
	}
}

func TestVideoUploadRejections(t *testing.T) {
	up := &uploaderStub{}
	srv := videoServer(up, &videoManagerStub{})

	body, contentType := multipartUpload(t, map[string]string{"title": "Lesson"}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous upload, got %d", rec.Code)
	}

	body, contentType = multipartUpload(t, map[string]string{"title": "Lesson", "isFree": "maybe"}, true)
	req = httptest.NewRequest(http.MethodPost, "/api/admin/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token-alice")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad isFree, got %d", rec.Code)
	}

	body, contentType = multipartUpload(t, map[string]string{"title": "Lesson"}, false)
	req = httptest.NewRequest(http.MethodPost, "/api/admin/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token-alice")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file, got %d", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["field"] != "file" {
		t.Fatalf("expected file field error, got %v", resp)
	}
}

func TestVideoUpdateAndDeleteOwnership(t *testing.T) {
	mgr := &videoManagerStub{videos: map[string]models.Video{
		"v1": {ID: "v1", OwnerID: alice.ID, Title: "Old", MediaURL: "https://cdn.example/videos/1_a.mp4"},
	}}
	srv := videoServer(&uploaderStub{}, mgr)

	title := "New"
	rec := doJSON(t, srv, http.MethodPatch, "/api/admin/videos/v1", "token-bob", models.VideoPatch{Title: &title})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner update, got %d", rec.Code)
	}
	if mgr.updated.Title != nil {
		t.Fatal("non-owner update reached the manager")
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/admin/videos/v1", "token-alice", models.VideoPatch{Title: &title})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner update, got %d", rec.Code)
	}
	var updated models.Video
	decodeBody(t, rec, &updated)
	if updated.Title != "New" {
		t.Fatalf("expected new title, got %q", updated.Title)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/videos/v1", "token-bob", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner delete, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/videos/v1", "token-alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for owner delete, got %d", rec.Code)
	}
	if mgr.deletedID != "v1" || mgr.deletedLocate != "https://cdn.example/videos/1_a.mp4" {
		t.Fatalf("unexpected delete call %q %q", mgr.deletedID, mgr.deletedLocate)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/videos/missing", "token-alice", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestVideoListScopedToOwner(t *testing.T) {
	mgr := &videoManagerStub{videos: map[string]models.Video{
		"v1": {ID: "v1", OwnerID: alice.ID},
		"v2": {ID: "v2", OwnerID: bob.ID},
	}}
	srv := videoServer(&uploaderStub{}, mgr)

	rec := doJSON(t, srv, http.MethodGet, "/api/admin/videos", "token-bob", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var resp struct {
		Videos []models.Video `json:"videos"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Videos) != 1 || resp.Videos[0].ID != "v2" {
		t.Fatalf("expected only bob's video, got %+v", resp.Videos)
	}
}
