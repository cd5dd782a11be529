package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// UpdateBalance fails with domain.ErrSequenceConflict unless the stored sequence equals expectedSequence.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, expectedSequence, newSequence int64, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.AccountStatus, closingDate *time.Time, updatedAt time.Time) error
	List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
}

// JournalRepository defines data access for journal entries.
type JournalRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	// ListByAccount returns entries with sequence <= maxSequence, newest first.
	ListByAccount(ctx context.Context, accountID string, maxSequence int64, limit, offset int) ([]*domain.JournalEntry, error)
	// BalanceAsOf returns the running balance of the last entry value-dated on or before date, zero if none.
	// A nil tx reads outside any transaction.
	BalanceAsOf(ctx context.Context, tx Transaction, accountID string, date time.Time) (decimal.Decimal, error)
	Summarize(ctx context.Context, accountID string) (*domain.JournalSummary, error)
	ExistsByReference(ctx context.Context, tx Transaction, accountID, reference string) (bool, error)
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// AccrualRepository defines data access for monthly accrual rows.
type AccrualRepository interface {
	// Create fails with domain.ErrDuplicateAccrual when a settled row already exists for the month.
	Create(ctx context.Context, tx Transaction, accrual *domain.MonthlyAccrual) error
	GetSettled(ctx context.Context, tx Transaction, accountID string, month domain.Month) (*domain.MonthlyAccrual, bool, error)
	SettledMonths(ctx context.Context, accountID string, from, to domain.Month) ([]domain.Month, error)
	LastPostedMonth(ctx context.Context, accountID string) (domain.Month, bool, error)
	List(ctx context.Context, filter domain.AccrualFilter) ([]*domain.MonthlyAccrual, error)
}

// Transaction represents a store transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the processing date.
type Clock interface {
	Now() time.Time
}

// Retrier re-runs an operation on transient store conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// BatchLock keeps a batch job single-flight across processes.
type BatchLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Unlock(ctx context.Context, key, token string) error
}
