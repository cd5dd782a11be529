package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	store *Store
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(store *Store) *JournalRepository {
	return &JournalRepository{store: store}
}

// Append stages an entry. The entry must carry the account's next sequence number.
func (r *JournalRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	row := *entry
	return t.stage(func(s *Store) (func(), error) {
		entries := s.entries[row.AccountID]
		var last int64
		if n := len(entries); n > 0 {
			last = entries[n-1].Sequence
		}
		if row.Sequence != last+1 {
			return nil, fmt.Errorf("%w: entry sequence %d after %d",
				domain.ErrSequenceConflict, row.Sequence, last)
		}

		s.entries[row.AccountID] = append(entries, &row)
		return func() {
			cur := s.entries[row.AccountID]
			s.entries[row.AccountID] = cur[:len(cur)-1]
		}, nil
	})
}

// ListByAccount returns entries with sequence <= maxSequence, newest first.
func (r *JournalRepository) ListByAccount(
	ctx context.Context,
	accountID string,
	maxSequence int64,
	limit, offset int,
) ([]*domain.JournalEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := r.store.entries[accountID]
	visible := make([]*domain.JournalEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Sequence <= maxSequence {
			visible = append(visible, entries[i])
		}
	}

	page := paginate(visible, limit, offset)
	out := make([]*domain.JournalEntry, len(page))
	for i, e := range page {
		c := *e
		out[i] = &c
	}
	return out, nil
}

// BalanceAsOf returns the running balance of the latest entry by value date, then sequence.
// Reads see committed state, so tx only needs to be a memory transaction when set.
func (r *JournalRepository) BalanceAsOf(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time) (decimal.Decimal, error) {
	if tx != nil {
		if _, err := asTx(tx); err != nil {
			return decimal.Zero, err
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cutoff := domain.DateOf(date)
	var latest *domain.JournalEntry
	for _, e := range r.store.entries[accountID] {
		if e.ValueDate.After(cutoff) {
			continue
		}
		if latest == nil || e.ValueDate.After(latest.ValueDate) ||
			(e.ValueDate.Equal(latest.ValueDate) && e.Sequence > latest.Sequence) {
			latest = e
		}
	}

	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.RunningBalance, nil
}

// Summarize aggregates the account's journal.
func (r *JournalRepository) Summarize(ctx context.Context, accountID string) (*domain.JournalSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summary := &domain.JournalSummary{SignedSum: decimal.Zero, LastRunningBalance: decimal.Zero}
	for _, e := range r.store.entries[accountID] {
		summary.Count++
		summary.SignedSum = summary.SignedSum.Add(e.SignedAmount())
		summary.LastSequence = e.Sequence
		summary.LastRunningBalance = e.RunningBalance
	}
	return summary, nil
}

// ExistsByReference reports whether the account has an entry with the given reference.
func (r *JournalRepository) ExistsByReference(ctx context.Context, tx usecase.Transaction, accountID, reference string) (bool, error) {
	if tx != nil {
		if _, err := asTx(tx); err != nil {
			return false, err
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.entries[accountID] {
		if e.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

var _ usecase.JournalRepository = (*JournalRepository)(nil)
