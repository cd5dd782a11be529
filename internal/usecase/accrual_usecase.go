package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// MonthOutcome is what happened to one pending month during a run.
type MonthOutcome string

const (
	MonthPosted  MonthOutcome = "Posted"
	MonthSkipped MonthOutcome = "Skipped"
	MonthFailed  MonthOutcome = "Failed"
	// MonthAlreadySettled means another run settled the month first.
	MonthAlreadySettled MonthOutcome = "AlreadySettled"
)

// MonthResult describes one month processed for an account.
type MonthResult struct {
	Month           domain.Month
	Status          MonthOutcome
	MonthEndBalance decimal.Decimal
	Interest        decimal.Decimal
	TransactionID   string
	Error           error
}

// AccrualOutcome summarises processAccount for one account.
type AccrualOutcome struct {
	AccountID     string
	Currency      string
	Months        []MonthResult
	MonthsPosted  int
	MonthsSkipped int
	TotalInterest decimal.Decimal
	Failures      []MonthResult
	Err           error // set when the account could not be processed at all
}

// MonthsProcessed counts months settled by this run.
func (o *AccrualOutcome) MonthsProcessed() int {
	return o.MonthsPosted + o.MonthsSkipped
}

// Failed reports whether any month or the account itself failed.
func (o *AccrualOutcome) Failed() bool {
	return o.Err != nil || len(o.Failures) > 0
}

func (o *AccrualOutcome) add(r MonthResult) {
	o.Months = append(o.Months, r)
	switch r.Status {
	case MonthPosted:
		o.MonthsPosted++
		o.TotalInterest = o.TotalInterest.Add(r.Interest)
	case MonthSkipped:
		o.MonthsSkipped++
	case MonthFailed:
		o.Failures = append(o.Failures, r)
	}
}

// ProcessOptions tunes a scheduler run.
type ProcessOptions struct {
	// DryRun computes interest without writing entries or accrual rows.
	DryRun bool
}

// AccrualUseCase decides which months an account still owes interest for and posts them.
type AccrualUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	productRepo ProductRepository
	journalRepo JournalRepository
	accrualRepo AccrualRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAccrualUseCase creates a new AccrualUseCase.
func NewAccrualUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	journalRepo JournalRepository,
	accrualRepo AccrualRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AccrualUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AccrualUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		productRepo: productRepo,
		journalRepo: journalRepo,
		accrualRepo: accrualRepo,
		ledger:      ledger,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger,
	}
}

// PendingMonths lists months still owed, oldest first: from the later of the month after
// opening and the month after the last Posted accrual, through the last completed month
// before asOf, excluding months already settled.
func (uc *AccrualUseCase) PendingMonths(ctx context.Context, account *domain.Account, asOf time.Time) ([]domain.Month, error) {
	first := domain.MonthOf(account.OpeningDate).Next()
	last := domain.LastCompletedMonth(asOf)

	lastPosted, ok, err := uc.accrualRepo.LastPostedMonth(ctx, account.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if ok && lastPosted.Next().After(first) {
		first = lastPosted.Next()
	}

	if first.After(last) {
		return nil, nil
	}

	settled, err := uc.accrualRepo.SettledMonths(ctx, account.ID, first, last)
	if err != nil {
		return nil, storeError(err)
	}

	done := make(map[domain.Month]struct{}, len(settled))
	for _, m := range settled {
		done[m] = struct{}{}
	}

	var pending []domain.Month
	for _, m := range domain.MonthRange(first, last) {
		if _, ok := done[m]; !ok {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// ProcessAccount accrues every pending month in order. A failing month is recorded as a
// Failed row and stops the account, since later months build on its balance.
func (uc *AccrualUseCase) ProcessAccount(
	ctx context.Context,
	account *domain.Account,
	asOf time.Time,
	opts ProcessOptions,
) *AccrualOutcome {
	outcome := &AccrualOutcome{
		AccountID:     account.ID,
		Currency:      account.Currency,
		TotalInterest: decimal.Zero,
	}

	product, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		outcome.Err = storeError(err)
		return outcome
	}

	if !product.AnnualInterestRate.IsPositive() {
		return outcome
	}

	months, err := uc.PendingMonths(ctx, account, asOf)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	postingDate := domain.DateOf(asOf)
	log := uc.logger.With().Str("account_id", account.ID).Logger()

	for _, month := range months {
		var result MonthResult
		if opts.DryRun {
			result, err = uc.projectMonth(ctx, account, product, month)
		} else {
			result, err = uc.accrueMonth(ctx, account, product, month, postingDate)
		}

		if err != nil {
			result.Month = month
			result.Status = MonthFailed
			result.Error = err
			outcome.add(result)

			log.Error().Err(err).Str("month", month.String()).Msg("accrual failed, stopping account")
			if !opts.DryRun {
				uc.recordFailure(ctx, account, product, result, postingDate)
			}
			break
		}

		outcome.add(result)
		if !opts.DryRun {
			uc.recordAccrual(account.Currency, result)
		}
		log.Debug().
			Str("month", month.String()).
			Str("status", string(result.Status)).
			Str("interest", result.Interest.String()).
			Msg("accrual month processed")
	}

	return outcome
}

// projectMonth computes what accrueMonth would post without writing anything.
// Interest is value-dated at the posting date, so earlier projections never move a
// later month-end snapshot.
func (uc *AccrualUseCase) projectMonth(
	ctx context.Context,
	account *domain.Account,
	product *domain.Product,
	month domain.Month,
) (MonthResult, error) {
	balance, err := uc.journalRepo.BalanceAsOf(ctx, nil, account.ID, month.End())
	if err != nil {
		return MonthResult{}, storeError(err)
	}

	interest := domain.InterestFor(domain.Money{Amount: balance, Currency: account.Currency}, product.AnnualInterestRate, product.MinimumBalance())

	result := MonthResult{Month: month, Status: MonthSkipped, MonthEndBalance: balance, Interest: interest.Amount}
	if interest.IsPositive() {
		result.Status = MonthPosted
	}
	return result, nil
}

// accrueMonth settles one month in a single store transaction. The interest entry and
// the accrual row commit together or not at all.
func (uc *AccrualUseCase) accrueMonth(
	ctx context.Context,
	account *domain.Account,
	product *domain.Product,
	month domain.Month,
	postingDate time.Time,
) (MonthResult, error) {
	var result MonthResult

	err := uc.retry(ctx, func() error {
		result = MonthResult{Month: month}

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

		if _, found, err := uc.accrualRepo.GetSettled(txCtx, tx, account.ID, month); err != nil {
			return storeError(err)
		} else if found {
			result.Status = MonthAlreadySettled
			return nil
		}

		balance, err := uc.journalRepo.BalanceAsOf(txCtx, tx, account.ID, month.End())
		if err != nil {
			return storeError(err)
		}

		interest := domain.InterestFor(
			domain.Money{Amount: balance, Currency: locked.Currency},
			product.AnnualInterestRate,
			product.MinimumBalance(),
		)
		result.MonthEndBalance = balance
		result.Interest = interest.Amount

		accrual := &domain.MonthlyAccrual{
			ID:              uc.idGen.Generate(),
			AccountID:       account.ID,
			Month:           month,
			Currency:        locked.Currency,
			MonthEndBalance: balance,
			AnnualRate:      product.AnnualInterestRate,
			Interest:        interest.Amount,
			PostingDate:     postingDate,
			ProcessedAt:     uc.clock.Now().UTC(),
			Status:          domain.AccrualStatusSkipped,
		}

		if interest.IsPositive() {
			entry, err := uc.ledger.postLocked(txCtx, tx, locked, PostingInput{
				AccountID:   account.ID,
				Direction:   domain.DirectionCredit,
				Amount:      interest,
				Category:    domain.CategoryInterest,
				Description: domain.InterestDescription(month),
				Reference:   domain.InterestReference(month),
				Channel:     ChannelBatch,
				ValueDate:   postingDate,
				Actor:       domain.SystemActor,
			})
			if err != nil {
				return err
			}
			accrual.Status = domain.AccrualStatusPosted
			accrual.TransactionID = entry.ID
		}

		if err := uc.accrualRepo.Create(txCtx, tx, accrual); err != nil {
			if errors.Is(err, domain.ErrDuplicateAccrual) {
				result = MonthResult{Month: month, Status: MonthAlreadySettled}
				return nil
			}
			return storeError(err)
		}

		if err := tx.Commit(txCtx); err != nil {
			if errors.Is(err, domain.ErrDuplicateAccrual) {
				result = MonthResult{Month: month, Status: MonthAlreadySettled}
				return nil
			}
			return storeError(err)
		}

		result.Status = MonthOutcome(accrual.Status)
		result.TransactionID = accrual.TransactionID

		account.Balance = locked.Balance
		account.Sequence = locked.Sequence
		return nil
	})

	return result, err
}

// recordFailure writes a Failed attempt in its own transaction. It runs on a detached
// context so a cancelled batch still leaves the failure visible.
func (uc *AccrualUseCase) recordFailure(
	ctx context.Context,
	account *domain.Account,
	product *domain.Product,
	result MonthResult,
	postingDate time.Time,
) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTransactionTimeout)
	defer cancel()

	accrual := &domain.MonthlyAccrual{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Month:           result.Month,
		Currency:        account.Currency,
		MonthEndBalance: result.MonthEndBalance,
		AnnualRate:      product.AnnualInterestRate,
		Interest:        result.Interest,
		PostingDate:     postingDate,
		ProcessedAt:     uc.clock.Now().UTC(),
		Status:          domain.AccrualStatusFailed,
		FailureReason:   result.Error.Error(),
	}

	err := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.accrualRepo.Create(ctx, tx, accrual); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}()
	if err != nil {
		uc.logger.Error().Err(err).
			Str("account_id", account.ID).
			Str("month", result.Month.String()).
			Msg("failed to record accrual failure")
		return
	}

	if uc.metrics != nil {
		uc.metrics.Accruals.WithLabelValues(string(domain.AccrualStatusFailed)).Inc()
	}
}

// History lists accrual rows newest first.
func (uc *AccrualUseCase) History(ctx context.Context, filter domain.AccrualFilter) ([]*domain.MonthlyAccrual, error) {
	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	accruals, err := uc.accrualRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return accruals, nil
}

func (uc *AccrualUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *AccrualUseCase) recordAccrual(currency string, result MonthResult) {
	if uc.metrics == nil || result.Status == MonthAlreadySettled {
		return
	}
	uc.metrics.Accruals.WithLabelValues(string(result.Status)).Inc()
	if result.Status == MonthPosted {
		uc.metrics.InterestPosted.WithLabelValues(currency).Add(result.Interest.InexactFloat64())
	}
}
