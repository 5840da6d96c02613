package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
)

// fakeBackend is an in-memory DocumentBackend with call counters.
type fakeBackend struct {
	payload  []byte
	fetchErr error
	persists int
	fetches  int
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Fetch(_ context.Context) ([]byte, error) {
	b.fetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return b.payload, nil
}

func (b *fakeBackend) Persist(_ context.Context, payload []byte) error {
	b.persists++
	b.payload = append([]byte(nil), payload...)
	return nil
}

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) clock() Clock {
	return func() time.Time { return c.now }
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestRepo(backend DocumentBackend, clock *fakeClock, opts ...ProjectRepoOption) *ProjectRepo {
	opts = append([]ProjectRepoOption{WithProjectClock(clock.clock())}, opts...)
	return NewProjectRepo(backend, opts...)
}

func TestProjectRepoGetAllCaches(t *testing.T) {
	backend := &fakeBackend{payload: []byte(`[{"title": "One"}]`)}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(backend, clock)

	first, err := repo.GetAll(context.Background(), false)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(first) != 1 || first[0].Title != "One" {
		t.Fatalf("unexpected collection: %+v", first)
	}

	// Within the TTL the backend is not consulted again.
	if _, err := repo.GetAll(context.Background(), false); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if backend.fetches != 1 {
		t.Errorf("fetches = %d, want 1", backend.fetches)
	}

	clock.advance(11 * time.Second)
	if _, err := repo.GetAll(context.Background(), false); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if backend.fetches != 2 {
		t.Errorf("fetches after expiry = %d, want 2", backend.fetches)
	}
}

func TestProjectRepoForceBypassesCache(t *testing.T) {
	backend := &fakeBackend{payload: []byte(`[]`)}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(backend, clock)

	if _, err := repo.GetAll(context.Background(), false); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if _, err := repo.GetAll(context.Background(), true); err != nil {
		t.Fatalf("GetAll force: %v", err)
	}
	if backend.fetches != 2 {
		t.Errorf("fetches = %d, want 2", backend.fetches)
	}
}

func TestProjectRepoSaveThenForcedReadRoundTrips(t *testing.T) {
	backend := &fakeBackend{}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(backend, clock)

	order := 1.5
	input := []models.ProjectRecord{
		{
			Title:     "Night Market Launch",
			Category:  "  Signage  ",
			Status:    "draft",
			Featured:  true,
			Tags:      []string{"Neon", "neon", "Retail"},
			CreatedAt: "2025-04-01T12:00:00Z",
			Order:     &order,
			Media: []models.MediaDescriptor{
				{URL: "/uploads/a.jpg", Focus: &models.Focus{X: 30, Y: 70, Zoom: 1.2}},
			},
		},
	}

	saved, err := repo.SaveAll(context.Background(), input)
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if backend.persists != 1 {
		t.Fatalf("persists = %d, want 1", backend.persists)
	}

	reloaded, err := repo.GetAll(context.Background(), true)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if !reflect.DeepEqual(saved, reloaded) {
		t.Errorf("write/read drift:\nsaved    %+v\nreloaded %+v", saved, reloaded)
	}

	// Normalization ran on the way in.
	if reloaded[0].Featured {
		t.Error("draft project stayed featured")
	}
	if got := reloaded[0].Tags; len(got) != 2 {
		t.Errorf("tags = %v, want deduped pair", got)
	}
	if reloaded[0].Category != "Signage" {
		t.Errorf("category = %q", reloaded[0].Category)
	}
}

func TestProjectRepoEmptyRemoteFallsBackToFile(t *testing.T) {
	remote := &fakeBackend{payload: []byte(``)}
	local := &fakeBackend{payload: []byte(`[{"title": "Migrated"}]`)}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(remote, clock, WithProjectFallback(local))

	projects, err := repo.GetAll(context.Background(), false)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Migrated" {
		t.Fatalf("fallback not served: %+v", projects)
	}
	// The fallback is read-only: nothing may be written back to either side.
	if remote.persists != 0 || local.persists != 0 {
		t.Errorf("persists = %d/%d, want 0/0", remote.persists, local.persists)
	}

	// The fallback result is cached like any other read.
	if _, err := repo.GetAll(context.Background(), false); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if local.fetches != 1 {
		t.Errorf("fallback fetches = %d, want 1", local.fetches)
	}
}

func TestProjectRepoNonEmptyRemoteSkipsFallback(t *testing.T) {
	remote := &fakeBackend{payload: []byte(`[{"title": "Remote"}]`)}
	local := &fakeBackend{payload: []byte(`[{"title": "Stale"}]`)}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(remote, clock, WithProjectFallback(local))

	projects, err := repo.GetAll(context.Background(), false)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if projects[0].Title != "Remote" {
		t.Errorf("served %q, want remote copy", projects[0].Title)
	}
	if local.fetches != 0 {
		t.Errorf("fallback consulted %d times, want 0", local.fetches)
	}
}

func TestProjectRepoFetchErrorIsStorageError(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("connection refused")}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(backend, clock)

	_, err := repo.GetAll(context.Background(), false)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errs.IsStorage(err) {
		t.Errorf("err = %v, want a storage error", err)
	}
}

func TestProjectRepoCorruptDocumentIsStorageError(t *testing.T) {
	backend := &fakeBackend{payload: []byte(`{not json`)}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(backend, clock)

	_, err := repo.GetAll(context.Background(), false)
	if err == nil || !errs.IsStorage(err) {
		t.Errorf("err = %v, want a storage error", err)
	}
}

func TestProjectRepoReturnsClones(t *testing.T) {
	backend := &fakeBackend{payload: []byte(`[{"title": "One", "media": [{"url": "/uploads/a.jpg"}]}]`)}
	clock := &fakeClock{now: time.Now()}
	repo := newTestRepo(backend, clock)

	first, err := repo.GetAll(context.Background(), false)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	first[0].Title = "Mutated"
	first[0].Media[0].URL = "/uploads/changed.jpg"

	second, err := repo.GetAll(context.Background(), false)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if second[0].Title != "One" || second[0].Media[0].URL != "/uploads/a.jpg" {
		t.Errorf("cache leaked mutable state: %+v", second[0])
	}
}
