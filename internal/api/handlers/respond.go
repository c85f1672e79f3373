package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain errors to HTTP status codes
// ⭐ SSOT: error → status mapping lives here only
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrSymbolNotFound),
		errors.Is(err, contracts.ErrDataUnavailable),
		errors.Is(err, contracts.ErrPortfolioNotFound),
		errors.Is(err, contracts.ErrHoldingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes err with its mapped status; 5xx details are logged, not exposed
func respondDomainError(w http.ResponseWriter, log *logger.Logger, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error(message)
		respondError(w, status, message)
		return
	}
	respondError(w, status, err.Error())
}

// pathID parses a positive integer path variable
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
