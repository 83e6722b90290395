package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
	"koperasi-backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service sentinels onto HTTP status codes. Anything
// unmapped is a 500 with the detail kept out of the response body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrAccountSuspended):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrActiveLoanExists),
		errors.Is(err, service.ErrPrincipalAlreadyPaid),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrInstallmentPaid),
		errors.Is(err, service.ErrAutoSettled),
		errors.Is(err, service.ErrAlreadyDistributed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAmountNotPositive),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrMemberNotActive),
		errors.Is(err, service.ErrLoanLimitExceeded),
		errors.Is(err, service.ErrLoanNotApproved),
		errors.Is(err, service.ErrInstallmentOutOfOrder),
		errors.Is(err, service.ErrInvalidShares),
		errors.Is(err, service.ErrNothingCalculated),
		errors.Is(err, service.ErrNoPhoneNumber):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
