package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coreledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new account inside tx.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		CustomerID:     account.CustomerID,
		ProductID:      account.ProductID,
		Currency:       account.Currency,
		Balance:        decimalToNumeric(account.Balance),
		OverdraftLimit: decimalToNumeric(account.OverdraftLimit),
		Status:         string(account.Status),
		OpeningDate:    dateToPg(account.OpeningDate),
		ClosingDate:    optionalDateToPg(account.ClosingDate),
		Sequence:       account.Sequence,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// UpdateBalance writes a new balance guarded by the expected sequence.
func (r *AccountRepository) UpdateBalance(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	balance decimal.Decimal,
	expectedSequence, newSequence int64,
	updatedAt time.Time,
) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:         id,
		Balance:    decimalToNumeric(balance),
		Sequence:   expectedSequence,
		Sequence_2: newSequence,
		UpdatedAt:  timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("%w: account %s is not at sequence %d", domain.ErrSequenceConflict, id, expectedSequence)
	}

	return nil
}

// UpdateStatus changes the lifecycle status of an account.
func (r *AccountRepository) UpdateStatus(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	status domain.AccountStatus,
	closingDate *time.Time,
	updatedAt time.Time,
) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateAccountStatus(ctx, generated.UpdateAccountStatusParams{
		ID:          id,
		Status:      string(status),
		ClosingDate: optionalDateToPg(closingDate),
		UpdatedAt:   timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List returns accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Status:  textOrNull(string(filter.Status)),
		AfterID: filter.AfterID,
		Limit:   limitOrAll(filter.Limit),
		Offset:  int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, len(rows))
	for i, row := range rows {
		accounts[i] = rowToAccount(row)
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		CustomerID:     row.CustomerID,
		ProductID:      row.ProductID,
		Currency:       row.Currency,
		Balance:        numericToDecimal(row.Balance),
		OverdraftLimit: numericToDecimal(row.OverdraftLimit),
		Status:         domain.AccountStatus(row.Status),
		OpeningDate:    pgDateToTime(row.OpeningDate),
		ClosingDate:    pgDateToOptional(row.ClosingDate),
		Sequence:       row.Sequence,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

var _ usecase.AccountRepository = (*AccountRepository)(nil)
