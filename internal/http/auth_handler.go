package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

// AuthHandler login / check / logout
type AuthHandler struct {
	sessions *sessions
	logger   *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: &sessions{auth: auth, cookie: cookie},
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	sess, err := h.sessions.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.sessions.setCookie(w, sess)
	writeJSON(w, http.StatusOK, LoginResult{Success: true, User: sess.User})
}

// Check never fails: a broken session store reads as logged out.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.user(r)
	if err != nil {
		h.logger.Warn("Session lookup failed", zap.Error(err))
		user = nil
	}
	if user == nil {
		writeJSON(w, http.StatusOK, CheckResult{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, CheckResult{Authenticated: true, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.auth.Logout(r.Context(), h.sessions.token(r)); err != nil {
		h.logger.Warn("Logout failed", zap.Error(err))
	}
	h.sessions.clearCookie(w)
	writeJSON(w, http.StatusOK, Ok())
}
