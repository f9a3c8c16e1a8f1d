package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
)

// tokenVerifier accepts "token-<id>" bearer tokens for the identities it knows.
type tokenVerifier map[string]models.Identity

func (v tokenVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	identity, ok := v[token]
	if !ok {
		return models.Identity{}, auth.ErrInvalidToken
	}
	return identity, nil
}

var (
	alice = models.Identity{ID: "user-alice", Email: "alice@example.com"}
	bob   = models.Identity{ID: "user-bob", Email: "bob@example.com"}
)

func testVerifier() tokenVerifier {
	return tokenVerifier{"token-alice": alice, "token-bob": bob}
}

func newTestServer(deps Dependencies, verifier auth.Verifier) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return middleware.Identity(verifier)(mux)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

type inMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return repositories.ErrConflict
	}
	s.users[user.Email] = user
	return nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

// denyAll rejects every request.
type denyAll struct{}

func (denyAll) Allow(string) bool { return false }
