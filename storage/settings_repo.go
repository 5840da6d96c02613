package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
)

const settingsCacheTTL = 5 * time.Second

// SettingsRepo persists the singleton hero-video settings record.
type SettingsRepo struct {
	backend DocumentBackend

	mu    sync.Mutex
	cache ttlCache[models.SiteSettings]

	logger zerolog.Logger
}

type SettingsRepoOption func(*SettingsRepo)

// WithSettingsClock injects the cache clock for tests.
func WithSettingsClock(clock Clock) SettingsRepoOption {
	return func(r *SettingsRepo) { r.cache = newTTLCache[models.SiteSettings](settingsCacheTTL, clock) }
}

func NewSettingsRepo(backend DocumentBackend, opts ...SettingsRepoOption) *SettingsRepo {
	repo := &SettingsRepo{
		backend: backend,
		cache:   newTTLCache[models.SiteSettings](settingsCacheTTL, nil),
		logger:  log.With().Str("component", "settingsRepo").Logger(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *SettingsRepo) read(ctx context.Context, force bool) (models.SiteSettings, error) {
	if !force {
		if cached, ok := r.cache.get(); ok {
			return cached, nil
		}
	}

	payload, err := r.backend.Fetch(ctx)
	if err != nil {
		return models.SiteSettings{}, errs.NewStorageError("fetch", "hero settings", err)
	}

	settings := models.SiteSettings{}
	if len(payload) > 0 {
		var raw models.SiteSettings
		if err := json.Unmarshal(payload, &raw); err != nil {
			return models.SiteSettings{}, errs.NewStorageError("parse", "hero settings", err)
		}
		// Hero normalization failure degrades to "no hero configured"
		// rather than poisoning every read.
		hero, err := models.NormalizeHeroVideo(raw.HeroVideo)
		if err != nil {
			r.logger.Warn().Err(err).Msg("hero video normalization failed")
			hero = nil
		}
		settings.HeroVideo = hero
	}

	r.cache.put(settings)
	return settings, nil
}

func (r *SettingsRepo) persist(ctx context.Context, settings models.SiteSettings) error {
	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errs.NewStorageError("encode", "hero settings", err)
	}
	if err := r.backend.Persist(ctx, payload); err != nil {
		return errs.NewStorageError("persist", "hero settings", err)
	}
	r.cache.put(settings)
	return nil
}

// HeroVideo returns the current hero record, or nil when none is configured.
func (r *SettingsRepo) HeroVideo(ctx context.Context, force bool) (*models.HeroVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.read(ctx, force)
	if err != nil {
		return nil, err
	}
	return models.CloneHeroVideo(settings.HeroVideo), nil
}

// UpdateHeroVideo replaces the singleton with a normalized copy of entry.
func (r *SettingsRepo) UpdateHeroVideo(ctx context.Context, entry *models.HeroVideo) (*models.HeroVideo, error) {
	normalized, err := models.NormalizeHeroVideo(entry)
	if err != nil {
		return nil, errs.NewInvalidFieldError("heroVideo", err.Error())
	}
	if normalized == nil {
		return nil, errs.NewMissingRequiredFieldError("heroVideo")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.read(ctx, true)
	if err != nil {
		return nil, err
	}
	settings.HeroVideo = normalized
	if err := r.persist(ctx, settings); err != nil {
		return nil, err
	}
	return models.CloneHeroVideo(normalized), nil
}

// ClearHeroVideo removes the singleton record.
func (r *SettingsRepo) ClearHeroVideo(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.read(ctx, true)
	if err != nil {
		return err
	}
	settings.HeroVideo = nil
	return r.persist(ctx, settings)
}
