package memory

import (
	"context"
	"sort"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// AccrualRepository implements usecase.AccrualRepository.
type AccrualRepository struct {
	store *Store
}

// NewAccrualRepository creates a new AccrualRepository.
func NewAccrualRepository(store *Store) *AccrualRepository {
	return &AccrualRepository{store: store}
}

// settled must be called with the store lock held.
func (s *Store) settled(accountID string, month domain.Month) *domain.MonthlyAccrual {
	for _, a := range s.accruals {
		if a.AccountID == accountID && a.Month == month && a.Status.Settled() {
			return a
		}
	}
	return nil
}

// Create stages an accrual row. A second settled row for the same month is rejected
// both here and again at commit.
func (r *AccrualRepository) Create(ctx context.Context, tx usecase.Transaction, accrual *domain.MonthlyAccrual) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	row := *accrual
	if row.Status.Settled() {
		r.store.mu.RLock()
		existing := r.store.settled(row.AccountID, row.Month)
		r.store.mu.RUnlock()
		if existing != nil {
			return domain.ErrDuplicateAccrual
		}
	}

	return t.stage(func(s *Store) (func(), error) {
		if row.Status.Settled() && s.settled(row.AccountID, row.Month) != nil {
			return nil, domain.ErrDuplicateAccrual
		}
		s.accruals = append(s.accruals, &row)
		return func() {
			for i := len(s.accruals) - 1; i >= 0; i-- {
				if s.accruals[i] == &row {
					s.accruals = append(s.accruals[:i], s.accruals[i+1:]...)
					return
				}
			}
		}, nil
	})
}

// GetSettled returns the settled row for (account, month), if any.
func (r *AccrualRepository) GetSettled(
	ctx context.Context,
	tx usecase.Transaction,
	accountID string,
	month domain.Month,
) (*domain.MonthlyAccrual, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a := r.store.settled(accountID, month)
	if a == nil {
		return nil, false, nil
	}
	c := *a
	return &c, true, nil
}

// SettledMonths lists settled months in [from, to], oldest first.
func (r *AccrualRepository) SettledMonths(ctx context.Context, accountID string, from, to domain.Month) ([]domain.Month, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var months []domain.Month
	for _, a := range r.store.accruals {
		if a.AccountID != accountID || !a.Status.Settled() {
			continue
		}
		if a.Month.Before(from) || a.Month.After(to) {
			continue
		}
		months = append(months, a.Month)
	}

	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months, nil
}

// LastPostedMonth returns the latest month with a Posted accrual.
func (r *AccrualRepository) LastPostedMonth(ctx context.Context, accountID string) (domain.Month, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		last  domain.Month
		found bool
	)
	for _, a := range r.store.accruals {
		if a.AccountID != accountID || a.Status != domain.AccrualStatusPosted {
			continue
		}
		if !found || a.Month.After(last) {
			last, found = a.Month, true
		}
	}
	return last, found, nil
}

// List returns accrual rows, newest processing time first.
func (r *AccrualRepository) List(ctx context.Context, filter domain.AccrualFilter) ([]*domain.MonthlyAccrual, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*domain.MonthlyAccrual, 0)
	for _, a := range r.store.accruals {
		if filter.AccountID != "" && a.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		matched = append(matched, a)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].ProcessedAt.Equal(matched[j].ProcessedAt) {
			return matched[i].ProcessedAt.After(matched[j].ProcessedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	page := paginate(matched, filter.Limit, filter.Offset)
	out := make([]*domain.MonthlyAccrual, len(page))
	for i, a := range page {
		c := *a
		out[i] = &c
	}
	return out, nil
}

var _ usecase.AccrualRepository = (*AccrualRepository)(nil)
