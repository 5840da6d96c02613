package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
	"github.com/movilworks/portfolio-backend/shareid"
	"github.com/movilworks/portfolio-backend/storage"
)

const (
	defaultShareTitle       = "Movil Project"
	defaultShareDescription = "Explore more signage projects crafted by Movil."
)

type shareHandler struct {
	responder  Responder
	logger     zerolog.Logger
	repo       *storage.ProjectRepo
	siteOrigin string
}

func newShareHandler(repo *storage.ProjectRepo, siteOrigin string) shareHandler {
	logger := log.With().Str("handlerName", "shareHandler").Logger()

	return shareHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		repo:       repo,
		siteOrigin: strings.TrimRight(siteOrigin, "/"),
	}
}

// ShareMeta is the link-preview payload for a resolved share id.
type ShareMeta struct {
	ShareID      string `json:"shareId"`
	CanonicalURL string `json:"canonicalUrl"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Index        int    `json:"index"`
}

// resolveShareLink turns a share id into a redirect. Stale or legacy ids are
// first bounced to their canonical form; unknown ids land on the home page.
// Clients asking for JSON get the link-preview meta instead, canonical id
// included, so they never have to chase the redirect chain.
func (h shareHandler) resolveShareLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shareID := chi.URLParam(r, "shareID")
		wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")

		projects, err := h.repo.GetAll(r.Context(), false)
		if err != nil {
			h.logger.Error().Err(err).Str("shareId", shareID).Msg("share resolution failed")
			h.missShareLink(w, r, wantsJSON, err)
			return
		}

		match := shareid.Resolve(projects, shareID)
		if match == nil {
			h.logger.Info().Str("shareId", shareID).Msg("share id not found")
			h.missShareLink(w, r, wantsJSON, nil)
			return
		}

		if wantsJSON {
			h.responder.WriteJSON(w, h.shareMeta(match))
			return
		}

		if match.Canonical != shareID {
			http.Redirect(w, r, "/p/"+match.Canonical, http.StatusFound)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/#project-%d", match.Index), http.StatusFound)
	}
}

func (h shareHandler) missShareLink(w http.ResponseWriter, r *http.Request, wantsJSON bool, err error) {
	if !wantsJSON {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteError(w, errs.NewNotFound("share id"))
}

func (h shareHandler) shareMeta(match *shareid.Match) ShareMeta {
	title := strings.TrimSpace(match.Project.Title)
	if title == "" {
		title = defaultShareTitle
	}

	description := strings.Join(strings.Fields(match.Project.Description), " ")
	if description == "" {
		description = defaultShareDescription
	}

	image := models.PickShareImageURL(match.Project)
	switch {
	case image == "":
		image = h.siteOrigin + "/uploads/default-video-thumb.jpg"
	case strings.HasPrefix(image, "/"):
		image = h.siteOrigin + image
	}

	return ShareMeta{
		ShareID:      match.Canonical,
		CanonicalURL: h.siteOrigin + "/p/" + match.Canonical,
		Title:        title,
		Description:  description,
		Image:        image,
		Index:        match.Index,
	}
}
