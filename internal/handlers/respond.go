package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"design-pro/internal/service"
	"design-pro/internal/utils"
)

// writeServiceError maps service errors onto HTTP responses. Anything it does
// not recognise is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.FieldErrors(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		utils.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotDeletable), errors.Is(err, service.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed):
		utils.Error(w, http.StatusInternalServerError, err.Error())
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, "internal error")
	}
}
