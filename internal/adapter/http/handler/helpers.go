package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it, listing invalid fields
// for validation failures.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp := dto.ErrorFromDomain(message, verr)
		resp.Message = err.Error()
		writeJSON(w, status, resp)
		return
	}

	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeError(w, status, message, details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameCurrency),
		errors.Is(err, domain.ErrSameAgency),
		errors.Is(err, domain.ErrNegativeSpread),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidExchangeRate),
		errors.Is(err, domain.ErrInvalidTierBounds),
		errors.Is(err, domain.ErrTierOverlap),
		errors.Is(err, domain.ErrUnboundedTierNotLast),
		errors.Is(err, domain.ErrInvalidPercentage),
		errors.Is(err, domain.ErrTierCoverageGap),
		errors.Is(err, domain.ErrUnknownRole):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrInsufficientRole),
		errors.Is(err, domain.ErrSelfApproval):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrTierNotFound),
		errors.Is(err, domain.ErrCancellationNotFound),
		errors.Is(err, domain.ErrApprovalNotFound),
		errors.Is(err, domain.ErrReconciliationNotFound),
		errors.Is(err, domain.ErrLiquidityTransferNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrAlreadyTreated),
		errors.Is(err, domain.ErrInvalidTransactionState),
		errors.Is(err, domain.ErrInvalidCancellationState),
		errors.Is(err, domain.ErrInvalidLiquidityState),
		errors.Is(err, domain.ErrInvalidReconciliationTransition):
		return http.StatusConflict

	case errors.Is(err, domain.ErrRateNotFound),
		errors.Is(err, domain.ErrCancellationNotAllowed),
		errors.Is(err, domain.ErrTransactionNotCompleted),
		errors.Is(err, domain.ErrReversalOfReversal),
		errors.Is(err, domain.ErrNoEntriesToReverse),
		errors.Is(err, domain.ErrInsufficientLiquidity),
		errors.Is(err, domain.ErrApprovalNotRequired):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes and validates the request body into dst. An empty body
// decodes as the zero value. It writes the error response and returns false
// on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := domain.ValidateStruct(dst); err != nil {
		writeDomainError(w, "validation failed", err)
		return false
	}
	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery parses an RFC 3339 timestamp or a YYYY-MM-DD date. A missing
// parameter yields the zero time.
func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected RFC 3339 or YYYY-MM-DD, got %q", key, val)
	}
	return t, nil
}
