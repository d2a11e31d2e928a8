package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

// writeServiceError maps service errors to status codes. Anything unrecognized
// (ErrStore included) is a 500 with a generic message; the cause is only logged.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, Fail(service.ErrInvalidCredentials.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, Fail(service.ErrUnauthorized.Error()))
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, Fail(service.ErrForbidden.Error()))
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
	}
}
