package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseDateQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/balance?as_of=2024-02-29", nil)
	got, ok, err := parseDateQuery(req, "as_of")
	if err != nil || !ok || got.Format(domain.DateLayout) != "2024-02-29" {
		t.Fatalf("unexpected result %v %v %v", got, ok, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/balance", nil)
	if _, ok, err := parseDateQuery(req, "as_of"); ok || err != nil {
		t.Fatalf("missing parameter should be absent, got ok=%v err=%v", ok, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/balance?as_of=2024-02-30", nil)
	if _, _, err := parseDateQuery(req, "as_of"); err == nil {
		t.Fatal("expected error for impossible date")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrAccountNotFound), http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"not postable", domain.ErrAccountNotPostable, http.StatusUnprocessableEntity, "ACCOUNT_NOT_POSTABLE"},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusBadRequest, "CURRENCY_MISMATCH"},
		{"duplicate product", domain.ErrDuplicateProduct, http.StatusConflict, "DUPLICATE_PRODUCT"},
		{"batch running", usecase.ErrBatchInProgress, http.StatusConflict, "BATCH_IN_PROGRESS"},
		{"persistence", domain.ErrPersistence, http.StatusServiceUnavailable, "PERSISTENCE_FAILURE"},
		{"validation", &dto.ValidationError{Fields: []string{"amount: required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapDomainError(tt.err)
			if status != tt.expected || code != tt.code {
				t.Fatalf("expected %d %s, got %d %s", tt.expected, tt.code, status, code)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteDomainError_HidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()

	writeDomainError(rr, errors.New("pq: connection reset"))

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if rr.Code != http.StatusInternalServerError || resp.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected response %d %+v", rr.Code, resp)
	}
	if strings.Contains(resp.Message, "pq") {
		t.Fatalf("internal error leaked: %+v", resp)
	}
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

		var body dto.PostingRequest
		if decodeAndValidate(rr, req, &body) {
			t.Fatal("expected failure")
		}
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("failed validation", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"ten"}`))

		var body dto.PostingRequest
		if decodeAndValidate(rr, req, &body) {
			t.Fatal("expected failure")
		}

		var resp dto.ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if resp.Code != "VALIDATION_ERROR" || !strings.Contains(resp.Message, "amount") {
			t.Fatalf("unexpected error response: %+v", resp)
		}
	})

	t.Run("empty body for optional fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		var body dto.RunAccrualsRequest
		if !decodeAndValidate(rr, req, &body) {
			t.Fatalf("expected success, got %d %s", rr.Code, rr.Body.String())
		}
	})
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "INVALID_BODY", "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" || resp.Code != "INVALID_BODY" || resp.Message != "detail" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
