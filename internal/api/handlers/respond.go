// Package handlers provides HTTP handlers for the medication safety API.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/errs"
)

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// respondDomainError maps engine error kinds onto HTTP status codes.
// Infrastructure failures are retryable and surface as 503.
func respondDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errs.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errs.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errs.IsScheduleUndefined(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errs.IsInfrastructure(err):
		logger.Error("infrastructure failure", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry later")
	default:
		logger.Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
