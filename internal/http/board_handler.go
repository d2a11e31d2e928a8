package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/boardview"
	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

// BoardHandler block reads, status writes, board view and export
type BoardHandler struct {
	status   *service.StatusService
	sessions *sessions
	logger   *zap.Logger
	now      func() time.Time
}

func NewBoardHandler(status *service.StatusService, auth *service.AuthService, cookie CookieConfig, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		status:   status,
		sessions: &sessions{auth: auth, cookie: cookie},
		logger:   logger,
		now:      time.Now,
	}
}

func (h *BoardHandler) Blocks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Blocks())
}

func (h *BoardHandler) Units(w http.ResponseWriter, r *http.Request, block string) {
	units, err := h.status.FetchBlock(r.Context(), block)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, UnitsResult{Units: units})
}

func (h *BoardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.user(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if user == nil {
		writeServiceError(w, h.logger, service.ErrUnauthorized)
		return
	}

	var req service.UpsertRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	rec, err := h.status.Upsert(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, UpsertResult{Success: true, Record: rec})
}

// View server-side projection of the block under the query's filter.
func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request, block string) {
	filter, err := boardview.ParseFilterState(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	b, ok := domain.LookupBlock(block)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("unknown block %q", block)))
		return
	}
	units, err := h.status.FetchBlock(r.Context(), block)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, boardview.BuildBoard(b, units, filter, h.now()))
}

func (h *BoardHandler) Export(w http.ResponseWriter, r *http.Request, block string) {
	user, err := h.sessions.user(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if user == nil {
		writeServiceError(w, h.logger, service.ErrUnauthorized)
		return
	}
	b, ok := domain.LookupBlock(block)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("unknown block %q", block)))
		return
	}
	units, err := h.status.FetchBlock(r.Context(), block)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	data, err := service.GenerateBlockExport(b, units, h.now())
	if err != nil {
		h.logger.Error("Failed to generate export", zap.String("block", block), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=block-%s-status.xlsx", b.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
