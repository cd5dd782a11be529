package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/adapter/http/handler"
	"github.com/iho/coreledger/internal/adapter/http/middleware"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
	"github.com/iho/coreledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	PostingHandler *handler.PostingHandler
	ProductHandler *handler.ProductHandler
	BatchHandler   *handler.BatchHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler

	// Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor)
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/status", cfg.AccountHandler.ChangeStatus)
			r.Post("/{id}/credit", cfg.PostingHandler.Credit)
			r.Post("/{id}/debit", cfg.PostingHandler.Debit)
			r.Get("/{id}/balance", cfg.PostingHandler.Balance)
			r.Get("/{id}/transactions", cfg.PostingHandler.Journal)
			r.Get("/{id}/accruals", cfg.BatchHandler.AccountAccruals)
			r.Get("/{id}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Post("/", cfg.ProductHandler.Create)
			r.Get("/{id}", cfg.ProductHandler.Get)
		})

		// Batch jobs
		r.Route("/batch", func(r chi.Router) {
			r.Post("/monthly-accruals", cfg.BatchHandler.RunAccruals)
			r.Post("/monthly-fees", cfg.BatchHandler.RunFees)
			r.Get("/accrual-history", cfg.BatchHandler.History)
		})

		r.Get("/ledger/reconciliation", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
