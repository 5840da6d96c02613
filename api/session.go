package api

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "movil_admin"
	sessionLifetime   = 12 * time.Hour
)

// sessionManager signs and verifies the admin session cookie.
type sessionManager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func newSessionManager(secret string, secure bool) *sessionManager {
	return &sessionManager{
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
	}
}

func (m *sessionManager) enabled() bool {
	return len(m.secret) > 0
}

func (m *sessionManager) issue() (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *sessionManager) verify(token string) bool {
	if !m.enabled() || token == "" {
		return false
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return false
	}
	subject, err := parsed.Claims.GetSubject()
	return err == nil && subject == "admin"
}

func (m *sessionManager) validRequest(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	return m.verify(cookie.Value)
}

func (m *sessionManager) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *sessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
