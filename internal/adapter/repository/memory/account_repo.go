package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.ClosingDate != nil {
		d := *a.ClosingDate
		c.ClosingDate = &d
	}
	return &c
}

// Create stages a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	row := cloneAccount(account)
	return t.stage(func(s *Store) (func(), error) {
		if _, exists := s.accounts[row.ID]; exists {
			return nil, fmt.Errorf("memory: account %s already exists", row.ID)
		}
		s.accounts[row.ID] = row
		return func() { delete(s.accounts, row.ID) }, nil
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

// GetByIDForUpdate locks the account for the rest of tx and returns its committed state.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := t.lock(ctx, id); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// UpdateBalance stages a balance change guarded by the expected sequence.
func (r *AccountRepository) UpdateBalance(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	balance decimal.Decimal,
	expectedSequence, newSequence int64,
	updatedAt time.Time,
) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.stage(func(s *Store) (func(), error) {
		account, ok := s.accounts[id]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		if account.Sequence != expectedSequence {
			return nil, fmt.Errorf("%w: account %s at %d, expected %d",
				domain.ErrSequenceConflict, id, account.Sequence, expectedSequence)
		}

		prev := *account
		account.Balance = balance
		account.Sequence = newSequence
		account.UpdatedAt = updatedAt
		return func() { *account = prev }, nil
	})
}

// UpdateStatus stages a status change.
func (r *AccountRepository) UpdateStatus(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	status domain.AccountStatus,
	closingDate *time.Time,
	updatedAt time.Time,
) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.stage(func(s *Store) (func(), error) {
		account, ok := s.accounts[id]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}

		prev := *account
		account.Status = status
		account.ClosingDate = closingDate
		account.UpdatedAt = updatedAt
		return func() { *account = prev }, nil
	})
}

// List returns accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*domain.Account, 0)
	for _, account := range r.store.accounts {
		if filter.Status != "" && account.Status != filter.Status {
			continue
		}
		if filter.AfterID != "" && account.ID <= filter.AfterID {
			continue
		}
		matched = append(matched, account)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := paginate(matched, filter.Limit, filter.Offset)
	out := make([]*domain.Account, len(page))
	for i, a := range page {
		out[i] = cloneAccount(a)
	}
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ usecase.AccountRepository = (*AccountRepository)(nil)
