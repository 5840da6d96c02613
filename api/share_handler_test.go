package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/movilworks/portfolio-backend/models"
	"github.com/movilworks/portfolio-backend/shareid"
	"github.com/movilworks/portfolio-backend/storage"
)

// memoryBackend is an in-memory DocumentBackend for handler tests.
type memoryBackend struct {
	payload []byte
}

func (b *memoryBackend) Name() string { return "memory" }

func (b *memoryBackend) Fetch(_ context.Context) ([]byte, error) {
	return b.payload, nil
}

func (b *memoryBackend) Persist(_ context.Context, payload []byte) error {
	b.payload = append([]byte(nil), payload...)
	return nil
}

func shareTestRouter(t *testing.T, payload string) (*chi.Mux, []models.ProjectRecord) {
	t.Helper()

	repo := storage.NewProjectRepo(&memoryBackend{payload: []byte(payload)})
	handler := newShareHandler(repo, "https://movil.example")

	router := chi.NewRouter()
	router.Get("/p/{shareID}", handler.resolveShareLink())

	projects, err := repo.GetAll(context.Background(), true)
	if err != nil {
		t.Fatalf("load projects: %v", err)
	}
	return router, projects
}

func getRedirect(t *testing.T, router http.Handler, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code, rec.Header().Get("Location")
}

const shareTestProjects = `[
	{"title": "Night Market Launch", "createdAt": "2025-04-01T12:00:00Z"},
	{"title": "Harbor Lights", "media": [{"url": "https://cdn.example.com/xyz123.mp4", "type": "video"}]}
]`

func TestResolveShareLinkCanonical(t *testing.T) {
	router, projects := shareTestRouter(t, shareTestProjects)

	canonical := shareid.BuildID(projects[1], 1)
	code, location := getRedirect(t, router, "/p/"+canonical)

	if code != http.StatusFound {
		t.Fatalf("status = %d, want 302", code)
	}
	if location != "/#project-1" {
		t.Errorf("location = %q, want /#project-1", location)
	}
}

func TestResolveShareLinkLegacyRedirectsToCanonical(t *testing.T) {
	router, projects := shareTestRouter(t, shareTestProjects)

	code, location := getRedirect(t, router, "/p/0")

	if code != http.StatusFound {
		t.Fatalf("status = %d, want 302", code)
	}
	want := "/p/" + shareid.BuildID(projects[0], 0)
	if location != want {
		t.Errorf("location = %q, want %q", location, want)
	}
}

func getShareMeta(t *testing.T, router http.Handler, path string) (int, ShareMeta) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var meta ShareMeta
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
			t.Fatalf("decode meta: %v", err)
		}
	}
	return rec.Code, meta
}

const shareMetaProjects = `[
	{
		"title": "Atrium Wayfinding",
		"description": "  Lobby   signage \n refresh  ",
		"heroMediaUrl": "/uploads/hero.mp4",
		"media": [
			{"url": "/uploads/first.jpg"},
			{"url": "/uploads/hero.mp4", "type": "video", "thumbnail": "/uploads/hero-thumb.jpg"}
		]
	}
]`

func TestResolveShareLinkJSONMeta(t *testing.T) {
	router, projects := shareTestRouter(t, shareMetaProjects)

	// A legacy plain-index id still yields the canonical id in the meta.
	code, meta := getShareMeta(t, router, "/p/0")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	canonical := shareid.BuildID(projects[0], 0)
	if meta.ShareID != canonical {
		t.Errorf("shareId = %q, want %q", meta.ShareID, canonical)
	}
	if want := "https://movil.example/p/" + canonical; meta.CanonicalURL != want {
		t.Errorf("canonicalUrl = %q, want %q", meta.CanonicalURL, want)
	}
	if meta.Title != "Atrium Wayfinding" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Description != "Lobby signage refresh" {
		t.Errorf("description = %q", meta.Description)
	}
	if want := "https://movil.example/uploads/hero-thumb.jpg"; meta.Image != want {
		t.Errorf("image = %q, want %q", meta.Image, want)
	}
	if meta.Index != 0 {
		t.Errorf("index = %d, want 0", meta.Index)
	}
}

func TestResolveShareLinkJSONMetaDefaults(t *testing.T) {
	router, projects := shareTestRouter(t, `[{"title": "Night Market Launch", "createdAt": "2025-04-01T12:00:00Z"}]`)

	code, meta := getShareMeta(t, router, "/p/"+shareid.BuildID(projects[0], 0))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if meta.Description != defaultShareDescription {
		t.Errorf("description = %q", meta.Description)
	}
	if want := "https://movil.example/uploads/default-video-thumb.jpg"; meta.Image != want {
		t.Errorf("image = %q, want %q", meta.Image, want)
	}
}

func TestResolveShareLinkJSONNotFound(t *testing.T) {
	router, _ := shareTestRouter(t, shareTestProjects)

	code, _ := getShareMeta(t, router, "/p/made-up-identifier")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestResolveShareLinkNotFound(t *testing.T) {
	router, _ := shareTestRouter(t, shareTestProjects)

	code, location := getRedirect(t, router, "/p/made-up-identifier")

	if code != http.StatusFound {
		t.Fatalf("status = %d, want 302", code)
	}
	if location != "/" {
		t.Errorf("location = %q, want /", location)
	}
}
