package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/adapter/repository/memory"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/idgen"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
	"github.com/iho/coreledger/internal/infrastructure/retry"
	"github.com/iho/coreledger/internal/usecase"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(date string) *fixedClock {
	return &fixedClock{now: mustDate(date).Add(9 * time.Hour)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = mustDate(date).Add(9 * time.Hour)
}

func mustDate(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ledgerEnv wires every use case over one in-memory store.
type ledgerEnv struct {
	store    *memory.Store
	txm      *memory.TxManager
	accounts *memory.AccountRepository
	journal  *memory.JournalRepository
	products *memory.ProductRepository
	accruals *memory.AccrualRepository

	clock   *fixedClock
	metrics *metrics.Metrics

	ledger   *usecase.LedgerUseCase
	account  *usecase.AccountUseCase
	product  *usecase.ProductUseCase
	accrual  *usecase.AccrualUseCase
	batch    *usecase.BatchUseCase
	reconcil *usecase.ReconciliationUseCase
}

func newLedgerEnv(t *testing.T, today string) *ledgerEnv {
	t.Helper()

	store := memory.NewStore()
	env := &ledgerEnv{
		store:    store,
		txm:      memory.NewTxManager(store),
		accounts: memory.NewAccountRepository(store),
		journal:  memory.NewJournalRepository(store),
		products: memory.NewProductRepository(store),
		accruals: memory.NewAccrualRepository(store),
		clock:    newClock(today),
		metrics:  metrics.NewWithRegistry(prometheus.NewRegistry()),
	}
	env.wire(nil)
	return env
}

// wire builds the use cases. lock may be nil.
func (e *ledgerEnv) wire(lock usecase.BatchLock) {
	ids := idgen.NewULIDGenerator()
	log := zerolog.Nop()
	retrier := retry.NewRetrier(log)

	e.ledger = usecase.NewLedgerUseCase(e.txm, e.accounts, e.journal, e.products, ids, e.clock, retrier, e.metrics, log)
	e.account = usecase.NewAccountUseCase(e.txm, e.accounts, e.products, e.ledger, ids, e.clock, e.metrics)
	e.product = usecase.NewProductUseCase(e.products, ids, e.clock)
	e.accrual = usecase.NewAccrualUseCase(e.txm, e.accounts, e.products, e.journal, e.accruals, e.ledger, ids, e.clock, retrier, e.metrics, log)
	e.batch = usecase.NewBatchUseCase(e.accounts, e.products, e.journal, e.txm, e.accrual, e.ledger, lock, e.clock, 4, e.metrics, log)
	e.reconcil = usecase.NewReconciliationUseCase(e.accounts, e.journal, e.clock, e.metrics)
}

func (e *ledgerEnv) newProduct(t *testing.T, code, rate, minBalance, fee string) *domain.Product {
	t.Helper()
	p, err := e.product.CreateProduct(context.Background(), usecase.CreateProductInput{
		Code:                      code,
		Name:                      code + " savings",
		Currency:                  "USD",
		AnnualInterestRate:        rate,
		MinimumBalanceForInterest: minBalance,
		MonthlyMaintenanceFee:     fee,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *ledgerEnv) open(t *testing.T, productID, balance, openingDate string) *domain.Account {
	t.Helper()
	acc, err := e.account.OpenAccount(context.Background(), usecase.OpenAccountInput{
		CustomerID:     "cust-1",
		ProductID:      productID,
		OpeningBalance: balance,
		OpeningDate:    openingDate,
	})
	if err != nil {
		t.Fatalf("open account: %v", err)
	}
	return acc
}

func (e *ledgerEnv) balance(t *testing.T, accountID string) string {
	t.Helper()
	acc, err := e.accounts.GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return acc.BalanceMoney().String()
}
