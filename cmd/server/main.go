package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/coreledger/internal/adapter/http"
	"github.com/iho/coreledger/internal/adapter/http/handler"
	"github.com/iho/coreledger/internal/adapter/http/middleware"
	"github.com/iho/coreledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/coreledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/coreledger/internal/adapter/repository/redis"
	"github.com/iho/coreledger/internal/infrastructure/config"
	"github.com/iho/coreledger/internal/infrastructure/idgen"
	"github.com/iho/coreledger/internal/infrastructure/logger"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
	"github.com/iho/coreledger/internal/infrastructure/postgres"
	"github.com/iho/coreledger/internal/infrastructure/redis"
	"github.com/iho/coreledger/internal/infrastructure/retry"
	"github.com/iho/coreledger/internal/infrastructure/worker"
	"github.com/iho/coreledger/internal/usecase"
)

const limiterCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

// stores is the persistence backend selected by STORE_BACKEND.
type stores struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	journal   usecase.JournalRepository
	products  usecase.ProductRepository
	accruals  usecase.AccrualRepository
	checks    map[string]handler.Pinger
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreBackend == config.StoreMemory {
		store := memory.NewStore()
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			txManager: memory.NewTxManager(store),
			accounts:  memory.NewAccountRepository(store),
			journal:   memory.NewJournalRepository(store),
			products:  memory.NewProductRepository(store),
			accruals:  memory.NewAccrualRepository(store),
			checks:    map[string]handler.Pinger{},
			close:     func() {},
		}, nil
	}

	if cfg.MigrationsEnabled {
		if err := postgres.RunMigrations(cfg.DatabaseURL, logger.Component(log, "migrations")); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &stores{
		txManager: postgresRepo.NewTxManager(pool),
		accounts:  postgresRepo.NewAccountRepository(pool),
		journal:   postgresRepo.NewJournalRepository(pool),
		products:  postgresRepo.NewProductRepository(pool),
		accruals:  postgresRepo.NewAccrualRepository(pool),
		checks:    map[string]handler.Pinger{"postgres": pool},
		close:     pool.Close,
	}, nil
}

// app is the fully wired service.
type app struct {
	handler     http.Handler
	batch       *usecase.BatchUseCase
	rateLimiter *middleware.RateLimiter
	close       func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	closers := []func(){st.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		idempotencyStore usecase.IdempotencyStore
		batchLock        usecase.BatchLock
	)
	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		batchLock = redisRepo.NewBatchLock(client)
		st.checks["redis"] = redisPinger(client)
	}

	m := metrics.NewWithRegistry(reg)
	ids := idgen.NewULIDGenerator()
	retrier := retry.NewRetrier(logger.Component(log, "retry"))

	ledgerUC := usecase.NewLedgerUseCase(st.txManager, st.accounts, st.journal, st.products, ids, nil, retrier, m, logger.Component(log, "ledger"))
	accountUC := usecase.NewAccountUseCase(st.txManager, st.accounts, st.products, ledgerUC, ids, nil, m)
	productUC := usecase.NewProductUseCase(st.products, ids, nil)
	accrualUC := usecase.NewAccrualUseCase(st.txManager, st.accounts, st.products, st.journal, st.accruals,
		ledgerUC, ids, nil, retrier, m, logger.Component(log, "accrual"))
	batchUC := usecase.NewBatchUseCase(st.accounts, st.products, st.journal, st.txManager, accrualUC, ledgerUC,
		batchLock, nil, cfg.BatchConcurrency, m, logger.Component(log, "batch"))
	reconciliationUC := usecase.NewReconciliationUseCase(st.accounts, st.journal, nil, m)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		PostingHandler:   handler.NewPostingHandler(ledgerUC),
		ProductHandler:   handler.NewProductHandler(productUC),
		BatchHandler:     handler.NewBatchHandler(batchUC, accrualUC),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(st.checks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:           logger.Component(log, "http"),
	})

	return &app{
		handler:     router,
		batch:       batchUC,
		rateLimiter: rateLimiter,
		close:       closeAll,
	}, nil
}

func redisPinger(client *goredis.Client) handler.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		a.rateLimiter.RunCleanup(gctx, limiterCleanupInterval)
		return nil
	})

	if cfg.AccrualWorkerEnabled {
		w := worker.NewAccrualWorker(worker.Config{
			Runner:     a.batch,
			Logger:     log,
			Interval:   cfg.AccrualWorkerInterval,
			ChargeFees: cfg.AccrualWorkerFees,
		})
		g.Go(func() error {
			if err := w.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
