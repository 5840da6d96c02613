package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/media"
	"github.com/movilworks/portfolio-backend/models"
	"github.com/movilworks/portfolio-backend/storage"
)

type heroHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      *storage.SettingsRepo
	processor *media.AssetProcessor
	assets    AssetRemover
	uploadDir string
}

func newHeroHandler(repo *storage.SettingsRepo, processor *media.AssetProcessor, assets AssetRemover, uploadDir string) heroHandler {
	logger := log.With().Str("handlerName", "heroHandler").Logger()

	return heroHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
		processor: processor,
		assets:    assets,
		uploadDir: uploadDir,
	}
}

// publicHeroVideo serves the singleton to the site frontend. Reads go
// through the cache, so the ambient background never forces a backend
// round trip per page view.
func (h heroHandler) publicHeroVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hero, err := h.repo.HeroVideo(r.Context(), false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if hero != nil {
			w.Header().Set("Cache-Control", "public, max-age=30, s-maxage=120")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=5")
		}
		h.responder.WriteJSON(w, map[string]any{"heroVideo": hero})
	}
}

func (h heroHandler) getHeroVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hero, err := h.repo.HeroVideo(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{"heroVideo": hero})
	}
}

// setHeroVideo replaces the singleton. The request is multipart: an optional
// video file plus display and overlay fields; omitting the file keeps the
// current clip and only updates its presentation.
func (h heroHandler) setHeroVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart form", err))
			return
		}

		current, err := h.repo.HeroVideo(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		entry := models.NewHeroVideo()
		if current != nil {
			entry = models.CloneHeroVideo(current)
		}

		var replaced models.MediaDescriptor
		uploads, err := spoolUploads(r, "video", h.processor.TempRoot())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if len(uploads) > 0 {
			if media.Classify(uploads[0].Filename, uploads[0].MIMEType) != models.MediaTypeVideo {
				os.Remove(uploads[0].Path)
				h.responder.WriteError(w, errs.NewInvalidFieldError("video", "hero background requires a video file"))
				return
			}
			descriptor, err := h.processor.Process(r.Context(), uploads[0])
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			if current != nil {
				replaced = current.Media
			}
			entry.Media = *descriptor
		} else if entry.Media.URL == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("video"))
			return
		}

		if raw, sent := formValue(r, "display"); sent {
			var display models.HeroVideoDisplay
			if err := json.Unmarshal([]byte(raw), &display); err != nil {
				h.responder.WriteError(w, errs.NewMalformedPayloadError("display", err))
				return
			}
			entry.Display = display
		}
		if value, sent := formValue(r, "overlayMode"); sent {
			entry.OverlayMode = value
		}
		entry.OverlayOpacity = h.opacityField(r, "overlayOpacity", entry.OverlayOpacity)
		entry.ForegroundOpacity = h.opacityField(r, "foregroundOpacity", entry.ForegroundOpacity)
		entry.BackgroundOpacity = h.opacityField(r, "backgroundOpacity", entry.BackgroundOpacity)
		entry.UpdatedAt = ""

		saved, err := h.repo.UpdateHeroVideo(r.Context(), entry)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// The prior clip is orphaned once the new one is persisted.
		if replaced.URL != "" && replaced.URL != saved.Media.URL {
			h.removeAsset(r, replaced)
		}

		h.responder.WriteJSON(w, map[string]any{"heroVideo": saved})
	}
}

func (h heroHandler) clearHeroVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := h.repo.HeroVideo(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.repo.ClearHeroVideo(r.Context()); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if current != nil {
			h.removeAsset(r, current.Media)
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "hero video cleared",
		})
	}
}

func (h heroHandler) opacityField(r *http.Request, key string, fallback float64) float64 {
	raw, sent := formValue(r, key)
	if !sent {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func (h heroHandler) removeAsset(r *http.Request, entry models.MediaDescriptor) {
	if err := removeStoredAsset(r.Context(), h.assets, h.uploadDir, entry); err != nil {
		h.logger.Warn().Err(err).
			Str("url", entry.URL).
			Str("assetId", entry.AssetID).
			Msg("hero asset cleanup failed")
	}
}
