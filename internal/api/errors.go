// Package api holds what the HTTP handlers share.
package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"zodiac_backend/internal/service"
	"zodiac_backend/internal/service/audit"
	"zodiac_backend/internal/service/compliance"
	"zodiac_backend/internal/service/gaming"
	"zodiac_backend/pkg/resp"
)

// WriteServiceError maps a service error to its HTTP status.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEvent):
		resp.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, compliance.ErrNoSession),
		errors.Is(err, gaming.ErrConfirmationNotFound):
		resp.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gaming.ErrConfirmationSettled),
		errors.Is(err, audit.ErrSessionEnded):
		resp.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrShuttingDown):
		resp.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
