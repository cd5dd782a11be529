package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	productRepo ProductRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
) *AccountUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		productRepo: productRepo,
		ledger:      ledger,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	CustomerID     string
	ProductID      string
	OpeningBalance string // decimal string, empty means zero
	OpeningDate    string // YYYY-MM-DD, empty means today
}

// OpenAccount creates an Active account and posts its opening balance as the first entry.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	customerID := strings.TrimSpace(input.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrInvalidAccount)
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, storeError(err)
	}

	opening := domain.Zero(product.Currency)
	if input.OpeningBalance != "" {
		if opening, err = domain.ParseMoney(input.OpeningBalance, product.Currency); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now().UTC()
	openingDate := domain.DateOf(now)
	if input.OpeningDate != "" {
		if openingDate, err = domain.ParseDate(input.OpeningDate); err != nil {
			return nil, fmt.Errorf("%w: opening date %q", domain.ErrInvalidDate, input.OpeningDate)
		}
	}

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		CustomerID:     customerID,
		ProductID:      product.ID,
		Currency:       product.Currency,
		Balance:        decimal.Zero,
		OverdraftLimit: product.OverdraftLimit,
		Status:         domain.AccountStatusActive,
		OpeningDate:    openingDate,
		Sequence:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, storeError(err)
	}

	if opening.IsPositive() {
		_, err := uc.ledger.postLocked(txCtx, tx, account, PostingInput{
			AccountID:   account.ID,
			Direction:   domain.DirectionCredit,
			Amount:      opening,
			Category:    domain.CategoryDeposit,
			Description: "Opening balance",
			Reference:   "OPEN-" + account.ID,
			ValueDate:   openingDate,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, storeError(err)
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Status string
	Limit  int
	Offset int
}

// ListAccounts lists accounts ordered by ID.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	filter := domain.AccountFilter{Limit: limit, Offset: offset}
	if input.Status != "" {
		if filter.Status, err = domain.ParseAccountStatus(input.Status); err != nil {
			return nil, err
		}
	}

	accounts, err := uc.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return accounts, nil
}

// ChangeStatus moves an account to another lifecycle status. Closing requires a zero balance.
func (uc *AccountUseCase) ChangeStatus(ctx context.Context, id, status string) (*domain.Account, error) {
	next, err := domain.ParseAccountStatus(status)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, storeError(err)
	}

	if account.Status == next {
		return account, nil
	}

	if err := account.CanTransitionTo(next); err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	var closingDate *time.Time
	if next == domain.AccountStatusClosed {
		d := domain.DateOf(now)
		closingDate = &d
	}

	if err := uc.accountRepo.UpdateStatus(txCtx, tx, id, next, closingDate, now); err != nil {
		return nil, storeError(err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, storeError(err)
	}

	account.Status = next
	account.ClosingDate = closingDate
	account.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.AccountStatusChanges.WithLabelValues(string(next)).Inc()
	}

	return account, nil
}
