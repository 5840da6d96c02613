package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/movilworks/portfolio-backend/config"
	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/media"
	"github.com/movilworks/portfolio-backend/models"
	"github.com/movilworks/portfolio-backend/storage"
)

const assetDeleteConcurrency = 4

// AssetRemover deletes a remote asset by id. Nil when running local-only.
type AssetRemover interface {
	Delete(ctx context.Context, assetID string) error
}

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      *storage.ProjectRepo
	processor *media.AssetProcessor
	assets    AssetRemover
	settings  config.Settings
}

func newProjectHandler(repo *storage.ProjectRepo, processor *media.AssetProcessor, assets AssetRemover, settings config.Settings) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
		processor: processor,
		assets:    assets,
		settings:  settings,
	}
}

// ProjectCollection is the list payload for GET /projects.
type ProjectCollection struct {
	Projects []models.ProjectRecord `json:"projects"`
	Total    int                    `json:"total"`
}

func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force := r.URL.Query().Get("refresh") == "1"

		projects, err := h.repo.GetAll(r.Context(), force)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.parseForm(w, r) {
			return
		}

		title, _ := formValue(r, "title")
		if strings.TrimSpace(title) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("title"))
			return
		}

		uploads, err := spoolUploads(r, "media", h.settings.TempUploadDir)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		mediaList := h.processUploads(r.Context(), uploads)
		if len(mediaList) == 0 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("media", "no media item survived processing"))
			return
		}

		project := h.projectFromForm(r, models.ProjectRecord{})
		project.Media = mediaList
		preferredHero, _ := formValue(r, "heroMediaUrl")
		project.HeroMediaURL = models.PickHeroMediaURL(project.Media, preferredHero)

		projects, err := h.repo.GetAll(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projects = append(projects, project)

		saved, err := h.repo.SaveAll(r.Context(), projects)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		index := len(saved) - 1
		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, map[string]any{
			"project": saved[index],
			"index":   index,
		})
	}
}

func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := h.parseIndex(w, r)
		if !ok {
			return
		}
		if !h.parseForm(w, r) {
			return
		}

		projects, err := h.repo.GetAll(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if index >= len(projects) {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		project := projects[index]
		project = h.projectFromForm(r, project)

		// The media field carries the retained descriptors (order and
		// focus already edited); files under the same name are appended.
		var removed []models.MediaDescriptor
		if rawMedia, sent := formValue(r, "media"); sent {
			var retained []models.MediaDescriptor
			if err := json.Unmarshal([]byte(rawMedia), &retained); err != nil {
				h.responder.WriteError(w, errs.NewMalformedPayloadError("media", err))
				return
			}
			removed = missingMedia(project.Media, retained)
			project.Media = retained
		}

		uploads, err := spoolUploads(r, "media", h.settings.TempUploadDir)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		project.Media = append(project.Media, h.processUploads(r.Context(), uploads)...)

		preferredHero, heroSent := formValue(r, "heroMediaUrl")
		if !heroSent {
			preferredHero = project.HeroMediaURL
		}
		project.HeroMediaURL = models.PickHeroMediaURL(project.Media, preferredHero)

		projects[index] = project
		saved, err := h.repo.SaveAll(r.Context(), projects)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// Removed media is cleaned up after the record is safely persisted.
		h.deleteAssets(r.Context(), removed)

		h.responder.WriteJSON(w, map[string]any{
			"project": saved[index],
			"index":   index,
		})
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := h.parseIndex(w, r)
		if !ok {
			return
		}

		projects, err := h.repo.GetAll(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if index >= len(projects) {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		removed := projects[index].Media
		projects = append(projects[:index], projects[index+1:]...)

		if _, err := h.repo.SaveAll(r.Context(), projects); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.deleteAssets(r.Context(), removed)

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

func (h projectHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	maxBytes := int64(h.settings.MaxUploadSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxBytes))
			return false
		}
		h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart form", err))
		return false
	}
	return true
}

func (h projectHandler) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		h.responder.WriteError(w, errs.NewInvalidFieldError("index", "must be a non-negative integer"))
		return 0, false
	}
	return index, true
}

// projectFromForm overlays submitted fields onto base; absent fields keep
// their current values.
func (h projectHandler) projectFromForm(r *http.Request, base models.ProjectRecord) models.ProjectRecord {
	if value, sent := formValue(r, "title"); sent {
		base.Title = strings.TrimSpace(value)
	}
	if value, sent := formValue(r, "description"); sent {
		base.Description = strings.TrimSpace(value)
	}
	if value, sent := formValue(r, "category"); sent {
		base.Category = value
	}
	if value, sent := formValue(r, "client"); sent {
		base.Client = value
	}
	if value, sent := formValue(r, "status"); sent {
		base.Status = models.NormalizeStatus(value)
	}
	if value, sent := formValue(r, "featured"); sent {
		base.Featured = models.ParseBool(value, base.Featured)
	}
	if value, sent := formValue(r, "tags"); sent {
		base.Tags = models.SplitTags(value)
	}
	if value, sent := formValue(r, "order"); sent {
		base.Order = models.ParseOrder(value)
	}
	return base
}

// processUploads runs the batch and keeps the survivors; failures were
// already logged per item by the processor.
func (h projectHandler) processUploads(ctx context.Context, uploads []media.Upload) []models.MediaDescriptor {
	var out []models.MediaDescriptor
	for _, result := range h.processor.ProcessBatch(ctx, uploads) {
		if result.Err == nil && result.Media != nil {
			out = append(out, *result.Media)
		}
	}
	return out
}

// missingMedia returns the entries of before whose URL no longer appears in
// after.
func missingMedia(before, after []models.MediaDescriptor) []models.MediaDescriptor {
	kept := make(map[string]bool, len(after))
	for _, entry := range after {
		kept[entry.URL] = true
	}
	var missing []models.MediaDescriptor
	for _, entry := range before {
		if entry.URL != "" && !kept[entry.URL] {
			missing = append(missing, entry)
		}
	}
	return missing
}

// deleteAssets removes the backing assets of the given media entries, one
// call per item. Failures are logged and never fail the request.
func (h projectHandler) deleteAssets(ctx context.Context, entries []models.MediaDescriptor) {
	if len(entries) == 0 {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(assetDeleteConcurrency)
	for _, entry := range entries {
		entry := entry
		group.Go(func() error {
			if err := h.deleteAsset(groupCtx, entry); err != nil {
				h.logger.Warn().Err(err).
					Str("url", entry.URL).
					Str("assetId", entry.AssetID).
					Msg("asset cleanup failed")
			} else {
				h.logger.Info().Str("url", entry.URL).Msg("asset removed")
			}
			return nil
		})
	}
	_ = group.Wait()
}

func (h projectHandler) deleteAsset(ctx context.Context, entry models.MediaDescriptor) error {
	return removeStoredAsset(ctx, h.assets, h.settings.UploadDir, entry)
}
