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

const transactionSequenceKey = "transactions_account_sequence_key"

// JournalRepository implements usecase.JournalRepository over the transactions table.
type JournalRepository struct {
	queries *generated.Queries
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{queries: generated.New(db)}
}

// Append inserts an entry inside tx.
func (r *JournalRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:              entry.ID,
		AccountID:       entry.AccountID,
		Sequence:        entry.Sequence,
		Direction:       string(entry.Direction),
		Category:        entry.Category.String(),
		Amount:          decimalToNumeric(entry.Amount),
		Currency:        entry.Currency,
		PreviousBalance: decimalToNumeric(entry.PreviousBalance),
		RunningBalance:  decimalToNumeric(entry.RunningBalance),
		Description:     entry.Description,
		Reference:       entry.Reference,
		Channel:         entry.Channel,
		TransactionAt:   timeToPgTimestamptz(entry.TransactionAt),
		ValueDate:       dateToPg(entry.ValueDate),
		CreatedBy:       entry.CreatedBy,
	})
	if isUniqueViolation(err, transactionSequenceKey) {
		return fmt.Errorf("%w: sequence %d already used on account %s",
			domain.ErrSequenceConflict, entry.Sequence, entry.AccountID)
	}

	return err
}

// ListByAccount returns entries with sequence <= maxSequence, newest first.
func (r *JournalRepository) ListByAccount(
	ctx context.Context,
	accountID string,
	maxSequence int64,
	limit, offset int,
) ([]*domain.JournalEntry, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: accountID,
		Sequence:  maxSequence,
		Limit:     limitOrAll(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// BalanceAsOf returns the running balance of the last entry value-dated on or before date.
// A nil tx reads on the pool.
func (r *JournalRepository) BalanceAsOf(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time) (decimal.Decimal, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := queries.GetBalanceAsOf(ctx, generated.GetBalanceAsOfParams{
		AccountID: accountID,
		ValueDate: dateToPg(date),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// Summarize aggregates the journal of one account.
func (r *JournalRepository) Summarize(ctx context.Context, accountID string) (*domain.JournalSummary, error) {
	row, err := r.queries.SummarizeTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &domain.JournalSummary{
		Count:              row.EntryCount,
		SignedSum:          numericToDecimal(row.SignedSum),
		LastSequence:       row.LastSequence,
		LastRunningBalance: numericToDecimal(row.LastRunningBalance),
	}, nil
}

// ExistsByReference reports whether the account already carries an entry with reference.
// A nil tx reads on the pool.
func (r *JournalRepository) ExistsByReference(ctx context.Context, tx usecase.Transaction, accountID, reference string) (bool, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return false, err
	}

	return queries.TransactionReferenceExists(ctx, generated.TransactionReferenceExistsParams{
		AccountID: accountID,
		Reference: reference,
	})
}

func rowToEntry(row generated.Transaction) (*domain.JournalEntry, error) {
	category, err := domain.ParseCategory(row.Category)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", row.ID, err)
	}

	return &domain.JournalEntry{
		ID:              row.ID,
		AccountID:       row.AccountID,
		Sequence:        row.Sequence,
		Direction:       domain.Direction(row.Direction),
		Category:        category,
		Amount:          numericToDecimal(row.Amount),
		Currency:        row.Currency,
		PreviousBalance: numericToDecimal(row.PreviousBalance),
		RunningBalance:  numericToDecimal(row.RunningBalance),
		Description:     row.Description,
		Reference:       row.Reference,
		Channel:         row.Channel,
		TransactionAt:   row.TransactionAt.Time,
		ValueDate:       pgDateToTime(row.ValueDate),
		CreatedBy:       row.CreatedBy,
	}, nil
}

var _ usecase.JournalRepository = (*JournalRepository)(nil)
