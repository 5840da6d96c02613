package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/config"
	"github.com/movilworks/portfolio-backend/errs"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	sessions  *sessionManager
	password  string
}

func newAuthHandler(sessions *sessionManager, settings config.Settings) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		sessions:  sessions,
		password:  settings.AdminPassword,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.password == "" || !h.sessions.enabled() {
			h.responder.WriteError(w, errs.NewConfigurationError("ADMIN_PASSWORD", "ADMIN_SESSION_SECRET"))
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
			h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("failed admin login")
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid password"))
			return
		}

		token, err := h.sessions.issue()
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("session creation failed", err))
			return
		}

		h.sessions.setCookie(w, token)
		h.responder.WriteJSON(w, map[string]bool{"authenticated": true})
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.clearCookie(w)
		h.responder.WriteJSON(w, map[string]bool{"authenticated": false})
	}
}

func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]bool{
			"authenticated": h.sessions.validRequest(r),
		})
	}
}
