package httpapi

import (
	"net/http"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

// CookieConfig session cookie settings
type CookieConfig struct {
	Name   string
	Secure bool
}

// sessions resolves the caller of a request from the session cookie.
type sessions struct {
	auth   *service.AuthService
	cookie CookieConfig
}

func (s *sessions) token(r *http.Request) string {
	c, err := r.Cookie(s.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

// user returns nil, nil for anonymous requests.
func (s *sessions) user(r *http.Request) (*domain.SessionUser, error) {
	return s.auth.CurrentUser(r.Context(), s.token(r))
}

func (s *sessions) setCookie(w http.ResponseWriter, sess *domain.Session) {
	c := &http.Cookie{
		Name:     s.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !sess.ExpiresAt.IsZero() {
		c.Expires = sess.ExpiresAt
		c.MaxAge = int(time.Until(sess.ExpiresAt).Seconds())
	}
	http.SetCookie(w, c)
}

func (s *sessions) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
