package storage

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
)

const projectCacheTTL = 10 * time.Second

// ProjectRepo persists and loads the project collection through the active
// backend, with a short-TTL read-through cache. Every record passes through
// normalization on both read and write so legacy/partial data is upgraded
// transparently.
type ProjectRepo struct {
	backend  DocumentBackend
	fallback DocumentBackend

	mu    sync.Mutex
	cache ttlCache[[]models.ProjectRecord]

	logger zerolog.Logger
}

type ProjectRepoOption func(*ProjectRepo)

// WithProjectFallback configures a one-shot read fallback used when the
// active backend returns an empty collection (not-yet-migrated data). The
// fallback is never written to.
func WithProjectFallback(backend DocumentBackend) ProjectRepoOption {
	return func(r *ProjectRepo) { r.fallback = backend }
}

// WithProjectClock injects the cache clock for tests.
func WithProjectClock(clock Clock) ProjectRepoOption {
	return func(r *ProjectRepo) { r.cache = newTTLCache[[]models.ProjectRecord](projectCacheTTL, clock) }
}

func NewProjectRepo(backend DocumentBackend, opts ...ProjectRepoOption) *ProjectRepo {
	repo := &ProjectRepo{
		backend: backend,
		cache:   newTTLCache[[]models.ProjectRecord](projectCacheTTL, nil),
		logger:  log.With().Str("component", "projectRepo").Logger(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// GetAll serves the collection from cache when fresh, otherwise re-fetches
// from the active backend.
func (r *ProjectRepo) GetAll(ctx context.Context, force bool) ([]models.ProjectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force {
		if cached, ok := r.cache.get(); ok {
			return models.CloneProjects(cached), nil
		}
	}

	projects, err := r.load(ctx, r.backend)
	if err != nil {
		return nil, err
	}

	if len(projects) == 0 && r.fallback != nil {
		fallback, err := r.load(ctx, r.fallback)
		if err != nil {
			return nil, err
		}
		if len(fallback) > 0 {
			r.logger.Info().
				Str("backend", r.fallback.Name()).
				Int("count", len(fallback)).
				Msg("remote collection empty, served local fallback")
		}
		projects = fallback
	}

	r.cache.put(projects)
	return models.CloneProjects(projects), nil
}

func (r *ProjectRepo) load(ctx context.Context, backend DocumentBackend) ([]models.ProjectRecord, error) {
	payload, err := backend.Fetch(ctx)
	if err != nil {
		return nil, errs.NewStorageError("fetch", "project collection", err)
	}
	if len(payload) == 0 || strings.TrimSpace(string(payload)) == "" {
		return []models.ProjectRecord{}, nil
	}

	var raw []models.ProjectRecord
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errs.NewStorageError("parse", "project collection", err)
	}
	return models.NormalizeProjects(raw), nil
}

// SaveAll normalizes the collection, persists it atomically as a whole, and
// refreshes the cache with the just-written value.
func (r *ProjectRepo) SaveAll(ctx context.Context, projects []models.ProjectRecord) ([]models.ProjectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := models.NormalizeProjects(projects)
	payload, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return nil, errs.NewStorageError("encode", "project collection", err)
	}
	if err := r.backend.Persist(ctx, payload); err != nil {
		return nil, errs.NewStorageError("persist", "project collection", err)
	}

	r.cache.put(normalized)
	return models.CloneProjects(normalized), nil
}
