package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

type NewsHandler struct {
	news     *service.NewsService
	sessions *sessions
	logger   *zap.Logger
}

func NewNewsHandler(news *service.NewsService, auth *service.AuthService, cookie CookieConfig, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{
		news:     news,
		sessions: &sessions{auth: auth, cookie: cookie},
		logger:   logger,
	}
}

// List degrades to an empty list when the store fails; the ticker is best effort.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 0)
	items, err := h.news.List(r.Context(), limit)
	if err != nil {
		h.logger.Warn("News list failed", zap.Error(err))
		items = []domain.NewsItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NewsHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.user(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if user == nil {
		writeServiceError(w, h.logger, service.ErrUnauthorized)
		return
	}
	var in service.NewsInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	item, err := h.news.Add(r.Context(), user, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CreatedResult{Success: true, ID: item.ID})
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.user(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := h.news.Remove(r.Context(), user, r.URL.Query().Get("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok())
}
