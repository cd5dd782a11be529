package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Message: details,
	})
}

// writeDomainError maps err to a status and code and writes it.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := mapDomainError(err)
	message := http.StatusText(status)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeError(w, status, code, message, details)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrDuplicateProduct, http.StatusConflict, "DUPLICATE_PRODUCT"},
	{domain.ErrDuplicateAccrual, http.StatusConflict, "DUPLICATE_ACCRUAL"},
	{domain.ErrSequenceConflict, http.StatusConflict, "SEQUENCE_CONFLICT"},
	{usecase.ErrBatchInProgress, http.StatusConflict, "BATCH_IN_PROGRESS"},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	{domain.ErrAccountNotPostable, http.StatusUnprocessableEntity, "ACCOUNT_NOT_POSTABLE"},
	{domain.ErrInvalidStatus, http.StatusUnprocessableEntity, "INVALID_STATUS"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInvalidCurrency, http.StatusBadRequest, "INVALID_CURRENCY"},
	{domain.ErrCurrencyMismatch, http.StatusBadRequest, "CURRENCY_MISMATCH"},
	{domain.ErrInvalidCategory, http.StatusBadRequest, "INVALID_CATEGORY"},
	{domain.ErrInvalidDirection, http.StatusBadRequest, "INVALID_DIRECTION"},
	{domain.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
	{domain.ErrInvalidMonth, http.StatusBadRequest, "INVALID_MONTH"},
	{domain.ErrInvalidReference, http.StatusBadRequest, "INVALID_REFERENCE"},
	{domain.ErrInvalidDescription, http.StatusBadRequest, "INVALID_DESCRIPTION"},
	{domain.ErrInvalidRate, http.StatusBadRequest, "INVALID_RATE"},
	{domain.ErrInvalidAccount, http.StatusBadRequest, "INVALID_ACCOUNT"},
	{domain.ErrInvalidProduct, http.StatusBadRequest, "INVALID_PRODUCT"},
	{domain.ErrPersistence, http.StatusServiceUnavailable, "PERSISTENCE_FAILURE"},
}

// mapDomainError maps domain errors to HTTP status codes and error codes.
func mapDomainError(err error) (int, string) {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// decodeAndValidate reads a JSON body into req and validates it. It writes the
// error response and returns false on failure. An empty body is allowed when
// the request has no required fields.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err.Error())
			return false
		}
	}
	if err := dto.Validate(req); err != nil {
		writeDomainError(w, err)
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

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, key string) (time.Time, bool, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, false, nil
	}
	t, err := domain.ParseDate(val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func parseOptionalDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Already checked by the datetime validator.
	t, _ := domain.ParseDate(s)
	return t
}
