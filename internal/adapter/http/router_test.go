package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/coreledger/internal/adapter/http/middleware"
	"github.com/iho/coreledger/internal/adapter/repository/memory"
	redisrepo "github.com/iho/coreledger/internal/adapter/repository/redis"
	"github.com/iho/coreledger/internal/infrastructure/idgen"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
	"github.com/iho/coreledger/internal/infrastructure/retry"
	"github.com/iho/coreledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/accounts/{id}/status",
		"POST /api/v1/accounts/{id}/credit",
		"POST /api/v1/accounts/{id}/debit",
		"GET /api/v1/accounts/{id}/balance",
		"GET /api/v1/accounts/{id}/transactions",
		"GET /api/v1/accounts/{id}/accruals",
		"GET /api/v1/accounts/{id}/reconciliation",
		"POST /api/v1/products/",
		"GET /api/v1/products/{id}",
		"POST /api/v1/batch/monthly-accruals",
		"POST /api/v1/batch/monthly-fees",
		"GET /api/v1/batch/accrual-history",
		"GET /api/v1/ledger/reconciliation",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_AccrualLifecycle(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	var product dto.ProductResponse
	do(t, router, http.MethodPost, "/api/v1/products",
		`{"code":"SAV","name":"Savings","currency":"USD","annual_interest_rate":"0.06"}`, http.StatusCreated, &product)

	var account dto.AccountResponse
	do(t, router, http.MethodPost, "/api/v1/accounts",
		`{"customer_id":"cust-1","product_id":"`+product.ID+`","opening_balance":"1000.00","opening_date":"2024-01-15"}`,
		http.StatusCreated, &account)
	assert.Equal(t, "1000.00", account.Balance)

	var run dto.BatchResultResponse
	do(t, router, http.MethodPost, "/api/v1/batch/monthly-accruals", `{"as_of":"2024-04-01"}`, http.StatusOK, &run)
	assert.Equal(t, 2, run.MonthsProcessed)
	assert.Equal(t, "10.00", run.TotalInterest["USD"])

	var balance dto.BalanceResponse
	do(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID+"/balance", "", http.StatusOK, &balance)
	assert.Equal(t, "1010.00", balance.Balance)

	var rerun dto.BatchResultResponse
	do(t, router, http.MethodPost, "/api/v1/batch/monthly-accruals", `{"as_of":"2024-04-01"}`, http.StatusOK, &rerun)
	assert.Equal(t, 0, rerun.MonthsProcessed)

	var accruals []dto.AccrualResponse
	do(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID+"/accruals?status=Posted", "", http.StatusOK, &accruals)
	require.Len(t, accruals, 2)

	var journal dto.JournalResponse
	do(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID+"/transactions", "", http.StatusOK, &journal)
	require.Len(t, journal.Transactions, 3)
	assert.Equal(t, "INT-2024-03", journal.Transactions[0].Reference)

	var rec dto.ReconciliationResponse
	do(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID+"/reconciliation", "", http.StatusOK, &rec)

	var errResp dto.ErrorResponse
	do(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/debit", `{"amount":"5000.00"}`, http.StatusUnprocessableEntity, &errResp)
	assert.Equal(t, "INSUFFICIENT_FUNDS", errResp.Code)
}

func TestNewRouter_IdempotentCredit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = redisrepo.NewIdempotencyStore(client)
	}))

	var product dto.ProductResponse
	do(t, router, http.MethodPost, "/api/v1/products", `{"code":"CHK","currency":"USD"}`, http.StatusCreated, &product)
	var account dto.AccountResponse
	do(t, router, http.MethodPost, "/api/v1/accounts",
		`{"customer_id":"cust-1","product_id":"`+product.ID+`"}`, http.StatusCreated, &account)

	credit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+account.ID+"/credit", strings.NewReader(`{"amount":"25.00"}`))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "dep-1")
		req.Header.Set(apimiddleware.ActorHeader, "teller-7")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := credit()
	second := credit()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))

	var tx dto.TransactionResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &tx))
	assert.Equal(t, "teller-7", tx.CreatedBy)

	var balance dto.BalanceResponse
	do(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID+"/balance", "", http.StatusOK, &balance)
	assert.Equal(t, "25.00", balance.Balance)
}

func do(t *testing.T, h http.Handler, method, path, body string, wantStatus int, out any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, wantStatus, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

// newRouterConfig wires the full API over the in-memory store.
func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	accounts := memory.NewAccountRepository(store)
	journal := memory.NewJournalRepository(store)
	products := memory.NewProductRepository(store)
	accruals := memory.NewAccrualRepository(store)

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	log := zerolog.Nop()
	ids := idgen.NewULIDGenerator()
	retrier := retry.NewRetrier(log)

	ledgerUC := usecase.NewLedgerUseCase(txm, accounts, journal, products, ids, nil, retrier, m, log)
	accountUC := usecase.NewAccountUseCase(txm, accounts, products, ledgerUC, ids, nil, m)
	productUC := usecase.NewProductUseCase(products, ids, nil)
	accrualUC := usecase.NewAccrualUseCase(txm, accounts, products, journal, accruals, ledgerUC, ids, nil, retrier, m, log)
	batchUC := usecase.NewBatchUseCase(accounts, products, journal, txm, accrualUC, ledgerUC, nil, nil, 4, m, log)
	reconciliationUC := usecase.NewReconciliationUseCase(accounts, journal, nil, m)

	cfg := RouterConfig{
		AccountHandler: handler.NewAccountHandler(accountUC),
		PostingHandler: handler.NewPostingHandler(ledgerUC),
		ProductHandler: handler.NewProductHandler(productUC),
		BatchHandler:   handler.NewBatchHandler(batchUC, accrualUC),
		LedgerHandler:  handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:  handler.NewHealthHandler(nil),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         log,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
