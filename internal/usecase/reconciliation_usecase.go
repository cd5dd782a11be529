package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// reconcileReadAttempts bounds how often a busy account is re-read before it is judged.
const reconcileReadAttempts = 5

// ReconciliationUseCase checks stored balances against the journal.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
	clock       Clock
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	clock Clock,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		clock:       clock,
		metrics:     metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID          string
	Currency           string
	RecordedBalance    decimal.Decimal
	CalculatedBalance  decimal.Decimal
	LastRunningBalance decimal.Decimal
	Difference         decimal.Decimal
	RecordedSequence   int64
	EntryCount         int64
	IsReconciled       bool
	LastChecked        time.Time
}

// ReconcileAccount compares the stored balance and sequence with what the journal adds up to.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	summary, err := uc.journalRepo.Summarize(ctx, account.ID)
	if err != nil {
		return nil, storeError(err)
	}

	// The summary may include postings committed after the account read; only a
	// matching sequence makes the comparison meaningful.
	for attempt := 1; summary.LastSequence > account.Sequence && attempt < reconcileReadAttempts; attempt++ {
		if account, err = uc.accountRepo.GetByID(ctx, account.ID); err != nil {
			return nil, storeError(err)
		}
		if summary, err = uc.journalRepo.Summarize(ctx, account.ID); err != nil {
			return nil, storeError(err)
		}
	}

	result := &ReconciliationResult{
		AccountID:          account.ID,
		Currency:           account.Currency,
		RecordedBalance:    account.Balance,
		CalculatedBalance:  summary.SignedSum,
		LastRunningBalance: summary.LastRunningBalance,
		Difference:         account.Balance.Sub(summary.SignedSum),
		RecordedSequence:   account.Sequence,
		EntryCount:         summary.Count,
		LastChecked:        uc.clock.Now().UTC(),
	}

	result.IsReconciled = result.Difference.IsZero() &&
		summary.Count == account.Sequence &&
		summary.LastSequence == account.Sequence &&
		(summary.Count == 0 || summary.LastRunningBalance.Equal(account.Balance))

	if !result.IsReconciled && uc.metrics != nil {
		uc.metrics.ReconciliationFailures.Inc()
	}

	return result, nil
}

// ReconcileAllAccounts reconciles every account, paging by ID.
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	afterID := ""
	for {
		accounts, err := uc.accountRepo.List(ctx, domain.AccountFilter{AfterID: afterID, Limit: batchPageSize})
		if err != nil {
			return nil, storeError(err)
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < batchPageSize {
			return results, nil
		}
		afterID = accounts[len(accounts)-1].ID
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// GenerateReconciliationReport reconciles all accounts and keeps only the mismatches.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.clock.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
