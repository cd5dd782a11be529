package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// ErrBatchInProgress is returned when another process holds the batch lock.
var ErrBatchInProgress = errors.New("batch already in progress")

const (
	accrualLockKey = "batch:monthly-accruals"
	feeLockKey     = "batch:monthly-fees"
)

// RunAccrualsInput represents input for a monthly accrual run.
type RunAccrualsInput struct {
	AsOf   time.Time // zero means the clock's current date
	DryRun bool
}

// BatchResult aggregates a monthly accrual run.
type BatchResult struct {
	AsOf              time.Time
	DryRun            bool
	AccountsProcessed int
	AccountsFailed    int
	MonthsProcessed   int
	TotalInterest     map[string]decimal.Decimal // by currency
	Results           []*AccrualOutcome
	Interrupted       bool
	StartedAt         time.Time
	FinishedAt        time.Time
}

// BatchUseCase runs the scheduler across all Active accounts.
type BatchUseCase struct {
	accountRepo AccountRepository
	productRepo ProductRepository
	journalRepo JournalRepository
	txManager   TransactionManager
	accruals    *AccrualUseCase
	ledger      *LedgerUseCase
	lock        BatchLock
	clock       Clock
	concurrency int
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewBatchUseCase creates a new BatchUseCase. lock may be nil.
func NewBatchUseCase(
	accountRepo AccountRepository,
	productRepo ProductRepository,
	journalRepo JournalRepository,
	txManager TransactionManager,
	accruals *AccrualUseCase,
	ledger *LedgerUseCase,
	lock BatchLock,
	clock Clock,
	concurrency int,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *BatchUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &BatchUseCase{
		accountRepo: accountRepo,
		productRepo: productRepo,
		journalRepo: journalRepo,
		txManager:   txManager,
		accruals:    accruals,
		ledger:      ledger,
		lock:        lock,
		clock:       clock,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

// RunMonthlyAccruals processes every Active account as of a date. Accounts run
// concurrently and fail independently. Cancelling ctx stops enumeration between
// accounts; accounts already started finish their current work.
func (uc *BatchUseCase) RunMonthlyAccruals(ctx context.Context, input RunAccrualsInput) (*BatchResult, error) {
	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = uc.clock.Now()
	}
	asOf = domain.DateOf(asOf)

	release, err := uc.acquire(ctx, accrualLockKey, input.DryRun)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &BatchResult{
		AsOf:          asOf,
		DryRun:        input.DryRun,
		TotalInterest: make(map[string]decimal.Decimal),
		StartedAt:     uc.clock.Now().UTC(),
	}

	log := uc.logger.With().Str("as_of", asOf.Format(domain.DateLayout)).Bool("dry_run", input.DryRun).Logger()
	log.Info().Msg("monthly accrual run started")

	var mu sync.Mutex
	interrupted, err := uc.forEachActiveAccount(ctx, func(account *domain.Account) {
		// Detached so a cancelled run never abandons an account half way through.
		outcome := uc.accruals.ProcessAccount(context.WithoutCancel(ctx), account, asOf, ProcessOptions{DryRun: input.DryRun})

		mu.Lock()
		defer mu.Unlock()

		result.AccountsProcessed++
		result.MonthsProcessed += outcome.MonthsProcessed()
		if outcome.MonthsPosted > 0 {
			result.TotalInterest[outcome.Currency] = result.TotalInterest[outcome.Currency].Add(outcome.TotalInterest)
		}
		if outcome.Failed() {
			result.AccountsFailed++
		}
		result.Results = append(result.Results, outcome)
	})

	result.Interrupted = interrupted
	result.FinishedAt = uc.clock.Now().UTC()
	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].AccountID < result.Results[j].AccountID
	})

	uc.recordRun("accruals", result.StartedAt, err, interrupted, result.AccountsProcessed, result.AccountsFailed)

	if err != nil {
		log.Error().Err(err).Msg("monthly accrual run aborted")
		return result, err
	}

	log.Info().
		Int("accounts_processed", result.AccountsProcessed).
		Int("accounts_failed", result.AccountsFailed).
		Int("months_processed", result.MonthsProcessed).
		Bool("interrupted", interrupted).
		Msg("monthly accrual run finished")

	return result, nil
}

// forEachActiveAccount pages Active accounts by ID and hands each to fn on a bounded
// worker pool. It reports whether ctx ended enumeration early.
func (uc *BatchUseCase) forEachActiveAccount(ctx context.Context, fn func(*domain.Account)) (bool, error) {
	var g errgroup.Group
	g.SetLimit(uc.concurrency)

	interrupted := false
	afterID := ""

enumerate:
	for {
		accounts, err := uc.accountRepo.List(ctx, domain.AccountFilter{
			Status:  domain.AccountStatusActive,
			AfterID: afterID,
			Limit:   batchPageSize,
		})
		if err != nil {
			_ = g.Wait()
			if ctx.Err() != nil {
				return true, nil
			}
			return false, storeError(err)
		}

		for _, account := range accounts {
			if ctx.Err() != nil {
				interrupted = true
				break enumerate
			}
			g.Go(func() error {
				fn(account)
				return nil
			})
		}

		if len(accounts) < batchPageSize {
			break
		}
		afterID = accounts[len(accounts)-1].ID
	}

	_ = g.Wait()
	return interrupted, nil
}

// FeeResult describes the fee outcome for one account.
type FeeResult struct {
	AccountID     string
	Currency      string
	Status        string // Charged, AlreadyCharged, Skipped, Failed
	Amount        decimal.Decimal
	TransactionID string
	Reason        string
}

// FeeBatchResult aggregates a maintenance fee run.
type FeeBatchResult struct {
	Month           domain.Month
	AccountsCharged int
	AccountsSkipped int
	AccountsFailed  int
	TotalFees       map[string]decimal.Decimal
	Results         []*FeeResult
	Interrupted     bool
}

const (
	FeeCharged        = "Charged"
	FeeAlreadyCharged = "AlreadyCharged"
	FeeSkipped        = "Skipped"
	FeeFailed         = "Failed"
)

// ApplyMonthlyFees debits each Active account's product maintenance fee for the last
// completed month before asOf. A fee already posted under the month's reference is not
// charged again; accounts without funds are skipped.
func (uc *BatchUseCase) ApplyMonthlyFees(ctx context.Context, asOf time.Time) (*FeeBatchResult, error) {
	if asOf.IsZero() {
		asOf = uc.clock.Now()
	}
	month := domain.LastCompletedMonth(asOf)

	release, err := uc.acquire(ctx, feeLockKey, false)
	if err != nil {
		return nil, err
	}
	defer release()

	started := uc.clock.Now().UTC()
	result := &FeeBatchResult{Month: month, TotalFees: make(map[string]decimal.Decimal)}

	var mu sync.Mutex
	interrupted, err := uc.forEachActiveAccount(ctx, func(account *domain.Account) {
		fee := uc.chargeFee(context.WithoutCancel(ctx), account, month)

		mu.Lock()
		defer mu.Unlock()

		switch fee.Status {
		case FeeCharged:
			result.AccountsCharged++
			result.TotalFees[fee.Currency] = result.TotalFees[fee.Currency].Add(fee.Amount)
		case FeeFailed:
			result.AccountsFailed++
		default:
			result.AccountsSkipped++
		}
		result.Results = append(result.Results, fee)
	})
	result.Interrupted = interrupted

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].AccountID < result.Results[j].AccountID
	})

	uc.recordRun("fees", started, err, interrupted, len(result.Results), result.AccountsFailed)

	if err != nil {
		return result, err
	}
	return result, nil
}

func (uc *BatchUseCase) chargeFee(ctx context.Context, account *domain.Account, month domain.Month) *FeeResult {
	result := &FeeResult{AccountID: account.ID, Currency: account.Currency, Amount: decimal.Zero}

	product, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		result.Status, result.Reason = FeeFailed, storeError(err).Error()
		return result
	}

	fee := product.MaintenanceFee()
	if !fee.IsPositive() {
		result.Status, result.Reason = FeeSkipped, "no maintenance fee"
		return result
	}
	if fee.Currency != account.Currency {
		result.Status = FeeFailed
		result.Reason = fmt.Errorf("%w: fee in %s", domain.ErrCurrencyMismatch, fee.Currency).Error()
		return result
	}

	reference := domain.FeeReference(month)

	err = uc.ledger.retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return storeError(err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		locked, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, account.ID)
		if err != nil {
			return storeError(err)
		}

		// Checked under the account lock so concurrent runs cannot both charge.
		charged, err := uc.journalRepo.ExistsByReference(txCtx, tx, account.ID, reference)
		if err != nil {
			return storeError(err)
		}
		if charged {
			result.Status = FeeAlreadyCharged
			return nil
		}

		entry, err := uc.ledger.postLocked(txCtx, tx, locked, PostingInput{
			AccountID:   account.ID,
			Direction:   domain.DirectionDebit,
			Amount:      fee,
			Category:    domain.CategoryFee,
			Description: fmt.Sprintf("Monthly maintenance fee - %s", month),
			Reference:   reference,
			Channel:     ChannelBatch,
			ValueDate:   month.End(),
			Actor:       domain.SystemActor,
		})
		if err != nil {
			return err
		}

		if err := tx.Commit(txCtx); err != nil {
			return storeError(err)
		}

		result.Status = FeeCharged
		result.Amount = entry.Amount
		result.TransactionID = entry.ID
		return nil
	})

	switch {
	case err == nil:
		if uc.metrics != nil && result.Status == FeeCharged {
			uc.metrics.FeesCharged.WithLabelValues(result.Currency).Add(result.Amount.InexactFloat64())
		}
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrAccountNotPostable):
		result.Status, result.Reason = FeeSkipped, err.Error()
	default:
		result.Status, result.Reason = FeeFailed, err.Error()
		uc.logger.Error().Err(err).Str("account_id", account.ID).Msg("maintenance fee failed")
	}

	return result
}

// acquire takes the distributed batch lock when one is configured. Dry runs write
// nothing and do not need it.
func (uc *BatchUseCase) acquire(ctx context.Context, key string, dryRun bool) (func(), error) {
	noop := func() {}
	if uc.lock == nil || dryRun {
		return noop, nil
	}

	token, acquired, err := uc.lock.TryLock(ctx, key, BatchLockTTL)
	if err != nil {
		// The store-level uniqueness guards still hold without the lock.
		uc.logger.Warn().Err(err).Str("key", key).Msg("batch lock unavailable, continuing without it")
		return noop, nil
	}
	if !acquired {
		return nil, ErrBatchInProgress
	}

	return func() {
		if err := uc.lock.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("failed to release batch lock")
		}
	}, nil
}

func (uc *BatchUseCase) recordRun(job string, started time.Time, err error, interrupted bool, accounts, failed int) {
	if uc.metrics == nil {
		return
	}

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case interrupted:
		outcome = "interrupted"
	case failed > 0:
		outcome = "partial"
	}

	uc.metrics.BatchRuns.WithLabelValues(job, outcome).Inc()
	uc.metrics.BatchDuration.Observe(time.Since(started).Seconds())
	uc.metrics.BatchAccounts.WithLabelValues("processed").Add(float64(accounts - failed))
	uc.metrics.BatchAccounts.WithLabelValues("failed").Add(float64(failed))
}
