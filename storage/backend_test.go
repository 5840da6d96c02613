package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "projects.json"))

	payload, err := backend.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if payload != nil {
		t.Errorf("payload = %q, want nil", payload)
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "projects.json")
	backend := NewFileBackend(path)

	want := []byte(`[{"title": "One"}]`)
	if err := backend.Persist(context.Background(), want); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got, err := backend.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("payload = %q, want %q", got, want)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}
