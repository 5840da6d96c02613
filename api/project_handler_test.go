package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/movilworks/portfolio-backend/config"
	"github.com/movilworks/portfolio-backend/storage"
)

// countingRemover records every asset deletion.
type countingRemover struct {
	mu      sync.Mutex
	deleted []string
	fail    bool
}

func (r *countingRemover) Delete(_ context.Context, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, assetID)
	if r.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func projectTestRouter(t *testing.T, payload string, remover AssetRemover) (*chi.Mux, *memoryBackend) {
	t.Helper()

	backend := &memoryBackend{payload: []byte(payload)}
	repo := storage.NewProjectRepo(backend)
	settings := config.Settings{
		UploadDir:       t.TempDir(),
		TempUploadDir:   t.TempDir(),
		MaxUploadSizeMB: 10,
	}
	handler := newProjectHandler(repo, nil, remover, settings)

	router := chi.NewRouter()
	router.Get("/projects", handler.getAllProjects())
	router.Delete("/projects/{index}", handler.deleteProject())
	return router, backend
}

const projectTestPayload = `[
	{
		"title": "Night Market Launch",
		"media": [
			{"url": "https://cdn.example.com/a.jpg", "assetId": "movil/projects/a"},
			{"url": "https://cdn.example.com/b.mp4", "type": "video", "assetId": "movil/projects/b"}
		]
	},
	{"title": "Harbor Lights", "media": [{"url": "/uploads/local.jpg"}]}
]`

func TestGetAllProjects(t *testing.T) {
	router, _ := projectTestRouter(t, projectTestPayload, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}
}

func TestDeleteProjectCascadesOneCallPerAsset(t *testing.T) {
	remover := &countingRemover{}
	router, _ := projectTestRouter(t, projectTestPayload, remover)

	req := httptest.NewRequest(http.MethodDelete, "/projects/0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	sort.Strings(remover.deleted)
	if len(remover.deleted) != 2 {
		t.Fatalf("deletions = %v, want one per media item", remover.deleted)
	}
	if remover.deleted[0] != "movil/projects/a" || remover.deleted[1] != "movil/projects/b" {
		t.Errorf("deletions = %v", remover.deleted)
	}

	// The collection no longer contains the record.
	reqList := httptest.NewRequest(http.MethodGet, "/projects?refresh=1", nil)
	recList := httptest.NewRecorder()
	router.ServeHTTP(recList, reqList)
	if body := recList.Body.String(); body == "" || recList.Code != http.StatusOK {
		t.Fatalf("list status = %d", recList.Code)
	} else if strings.Contains(body, "Night Market Launch") {
		t.Error("deleted record still listed")
	}
}

func TestDeleteProjectSurvivesAssetFailures(t *testing.T) {
	remover := &countingRemover{fail: true}
	router, _ := projectTestRouter(t, projectTestPayload, remover)

	req := httptest.NewRequest(http.MethodDelete, "/projects/0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Asset cleanup is best effort: the request still succeeds.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(remover.deleted) != 2 {
		t.Errorf("deletions attempted = %d, want 2", len(remover.deleted))
	}
}

func TestDeleteProjectOutOfRange(t *testing.T) {
	router, _ := projectTestRouter(t, projectTestPayload, nil)

	req := httptest.NewRequest(http.MethodDelete, "/projects/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteProjectBadIndex(t *testing.T) {
	router, _ := projectTestRouter(t, projectTestPayload, nil)

	for _, path := range []string{"/projects/abc", "/projects/-1"} {
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("DELETE %s status = %d, want 400", path, rec.Code)
		}
	}
}
