package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

type accountServiceStub struct {
	openFn   func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, id string) (*domain.Account, error)
	listFn   func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	statusFn func(ctx context.Context, id, status string) (*domain.Account, error)
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) ChangeStatus(ctx context.Context, id, status string) (*domain.Account, error) {
	return s.statusFn(ctx, id, status)
}

func testAccount(id string) *domain.Account {
	return &domain.Account{
		ID:          id,
		CustomerID:  "cust-1",
		ProductID:   "prod-1",
		Currency:    "USD",
		Balance:     decimal.RequireFromString("1000"),
		Status:      domain.AccountStatusActive,
		OpeningDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Sequence:    1,
	}
}

func TestAccountHandler_Create_Success(t *testing.T) {
	var captured usecase.OpenAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return testAccount("acc-1"), nil
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{
		CustomerID:     "cust-1",
		ProductID:      "prod-1",
		OpeningBalance: "1000.00",
		OpeningDate:    "2024-01-15",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.CustomerID != "cust-1" || captured.OpeningBalance != "1000.00" || captured.OpeningDate != "2024-01-15" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Balance != "1000.00" || resp.OpeningDate != "2024-01-15" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Create_ValidationError(t *testing.T) {
	called := false
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			called = true
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"product_id":"p"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatal("use case must not run on invalid input")
	}
}

func TestAccountHandler_Create_UnknownProduct(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			return nil, domain.ErrProductNotFound
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"customer_id":"c","product_id":"p"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			if id != "acc-1" {
				return nil, domain.ErrAccountNotFound
			}
			return testAccount(id), nil
		},
	})

	t.Run("found", func(t *testing.T) {
		req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil), "id", "acc-1")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/nope", nil), "id", "nope")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		var resp dto.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Code != "ACCOUNT_NOT_FOUND" {
			t.Fatalf("unexpected code %q", resp.Code)
		}
	})
}

func TestAccountHandler_List(t *testing.T) {
	var captured usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{testAccount("acc-1"), testAccount("acc-2")}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?status=Active&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Status != "Active" || captured.Limit != 10 || captured.Offset != 5 {
		t.Fatalf("unexpected list input %+v", captured)
	}

	var resp []dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp))
	}
}

func TestAccountHandler_ChangeStatus(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		statusFn: func(ctx context.Context, id, status string) (*domain.Account, error) {
			if status == "Closed" {
				return nil, domain.ErrInvalidStatus
			}
			acc := testAccount(id)
			acc.Status = domain.AccountStatus(status)
			return acc, nil
		},
	})

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"freeze", `{"status":"Frozen"}`, http.StatusOK},
		{"close funded", `{"status":"Closed"}`, http.StatusUnprocessableEntity},
		{"unknown status", `{"status":"Sleeping"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := setChiURLParam(httptest.NewRequest(http.MethodPatch, "/accounts/acc-1/status", strings.NewReader(tt.body)), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.ChangeStatus(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
