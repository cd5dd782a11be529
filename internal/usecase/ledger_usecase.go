package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// LedgerUseCase owns posting to accounts and the reads that must agree with them.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	journalRepo JournalRepository
	productRepo ProductRepository
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. retrier and metrics may be nil.
// Without productRepo debits carry no transaction fee.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	productRepo ProductRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		productRepo: productRepo,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger,
	}
}

// PostingInput is a fully typed posting request.
type PostingInput struct {
	AccountID   string
	Direction   domain.Direction
	Amount      domain.Money
	Category    domain.Category
	Description string
	Reference   string
	Channel     string
	ValueDate   time.Time // zero means the posting date
	Actor       string    // empty means the context actor
}

// ManualPostingInput carries a credit or debit as it arrives from the API.
type ManualPostingInput struct {
	AccountID   string
	Amount      string
	Currency    string // empty means the account currency
	Category    string // empty means Deposit for credits, Withdrawal for debits
	Description string
	Reference   string
	Channel     string
	ValueDate   string // YYYY-MM-DD, empty means today
}

// BalanceSnapshot is an account balance at a posting sequence.
type BalanceSnapshot struct {
	AccountID string
	Balance   domain.Money
	Sequence  int64
	AsOf      time.Time
}

// JournalPage is a page of entries consistent with Balance and Sequence.
type JournalPage struct {
	AccountID string
	Balance   domain.Money
	Sequence  int64
	Entries   []*domain.JournalEntry
	Limit     int
	Offset    int
}

// Credit posts an incoming movement.
func (uc *LedgerUseCase) Credit(ctx context.Context, input ManualPostingInput) (*domain.JournalEntry, error) {
	return uc.postManual(ctx, domain.DirectionCredit, domain.CategoryDeposit, input)
}

// Debit posts an outgoing movement. When the account's product has a transaction fee, a
// second Fee entry with the same reference is posted in the same transaction and the
// funds check covers amount plus fee.
func (uc *LedgerUseCase) Debit(ctx context.Context, input ManualPostingInput) (*domain.JournalEntry, error) {
	return uc.postManual(ctx, domain.DirectionDebit, domain.CategoryWithdrawal, input)
}

func (uc *LedgerUseCase) postManual(
	ctx context.Context,
	direction domain.Direction,
	defaultCategory domain.Category,
	input ManualPostingInput,
) (*domain.JournalEntry, error) {
	currency := input.Currency
	if currency == "" {
		// Currency never changes after opening, an unlocked read is enough.
		account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
		if err != nil {
			return nil, storeError(err)
		}
		currency = account.Currency
	}

	amount, err := domain.ParseMoney(input.Amount, currency)
	if err != nil {
		uc.recordError(err)
		return nil, err
	}

	category := defaultCategory
	if input.Category != "" {
		if category, err = domain.ParseCategory(input.Category); err != nil {
			uc.recordError(err)
			return nil, err
		}
	}

	var valueDate time.Time
	if input.ValueDate != "" {
		if valueDate, err = domain.ParseDate(input.ValueDate); err != nil {
			return nil, fmt.Errorf("%w: value date %q", domain.ErrInvalidDate, input.ValueDate)
		}
	}

	posting := PostingInput{
		AccountID:   input.AccountID,
		Direction:   direction,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(input.Description),
		Reference:   strings.TrimSpace(input.Reference),
		Channel:     input.Channel,
		ValueDate:   valueDate,
	}
	chargeFee := direction == domain.DirectionDebit && category != domain.CategoryFee
	return uc.post(ctx, posting, chargeFee)
}

// Post applies one validated movement to an account and appends it to the journal,
// both in a single store transaction.
func (uc *LedgerUseCase) Post(ctx context.Context, input PostingInput) (*domain.JournalEntry, error) {
	return uc.post(ctx, input, false)
}

func (uc *LedgerUseCase) post(ctx context.Context, input PostingInput, chargeFee bool) (*domain.JournalEntry, error) {
	if err := validatePostingInput(input); err != nil {
		uc.recordError(err)
		return nil, err
	}

	start := time.Now()

	var entry, feeEntry *domain.JournalEntry
	err := uc.retry(ctx, func() error {
		feeEntry = nil

		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return storeError(err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
		if err != nil {
			return storeError(err)
		}

		fee := domain.Money{Currency: account.Currency}
		if chargeFee {
			if fee, err = uc.transactionFee(txCtx, account); err != nil {
				return err
			}
		}

		if fee.IsPositive() {
			if err := account.ValidatePostable(); err != nil {
				return err
			}
			if err := account.ValidateDebit(input.Amount.Amount.Add(fee.Amount)); err != nil {
				return err
			}
		}

		entry, err = uc.postLocked(txCtx, tx, account, input)
		if err != nil {
			return err
		}

		if fee.IsPositive() {
			feeEntry, err = uc.postLocked(txCtx, tx, account, PostingInput{
				AccountID:   account.ID,
				Direction:   domain.DirectionDebit,
				Amount:      fee,
				Category:    domain.CategoryFee,
				Description: TransactionFeeDescription,
				Reference:   input.Reference,
				Channel:     input.Channel,
				ValueDate:   input.ValueDate,
				Actor:       input.Actor,
			})
			if err != nil {
				return err
			}
		}

		if err := tx.Commit(txCtx); err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		uc.recordError(err)
		return nil, err
	}

	uc.recordPosting(entry, time.Since(start))
	if feeEntry != nil {
		uc.recordPosting(feeEntry, 0)
		uc.logger.Debug().
			Str("account_id", feeEntry.AccountID).
			Int64("sequence", feeEntry.Sequence).
			Str("amount", feeEntry.Amount.String()).
			Msg("transaction fee posted")
	}
	uc.logger.Debug().
		Str("account_id", entry.AccountID).
		Int64("sequence", entry.Sequence).
		Str("direction", string(entry.Direction)).
		Str("category", entry.Category.String()).
		Str("amount", entry.Amount.String()).
		Msg("posting committed")

	return entry, nil
}

// transactionFee returns the product fee for a customer debit, zero when none applies.
func (uc *LedgerUseCase) transactionFee(ctx context.Context, account *domain.Account) (domain.Money, error) {
	none := domain.Money{Amount: decimal.Zero, Currency: account.Currency}
	if uc.productRepo == nil || account.ProductID == "" {
		return none, nil
	}

	product, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		return none, storeError(err)
	}

	fee := product.DebitFee()
	if !fee.IsPositive() {
		return none, nil
	}
	if fee.Currency != account.Currency {
		return none, fmt.Errorf("%w: %s fee on %s account %s",
			domain.ErrCurrencyMismatch, fee.Currency, account.Currency, account.ID)
	}
	return fee, nil
}

// postLocked posts against an account already locked by tx. On success the account
// reflects the new balance and sequence.
func (uc *LedgerUseCase) postLocked(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	input PostingInput,
) (*domain.JournalEntry, error) {
	if input.Amount.Currency != account.Currency {
		return nil, fmt.Errorf("%w: posting %s to %s account %s",
			domain.ErrCurrencyMismatch, input.Amount.Currency, account.Currency, account.ID)
	}

	if err := account.ValidatePostable(); err != nil {
		return nil, err
	}

	if input.Direction == domain.DirectionDebit {
		if err := account.ValidateDebit(input.Amount.Amount); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now().UTC()

	valueDate := domain.DateOf(now)
	if !input.ValueDate.IsZero() {
		valueDate = domain.DateOf(input.ValueDate)
	}

	actor := input.Actor
	if actor == "" {
		actor = domain.ActorFromContext(ctx)
	}

	channel := input.Channel
	if channel == "" {
		channel = ChannelAPI
	}

	newBalance := account.Apply(input.Direction, input.Amount.Amount)

	entry := &domain.JournalEntry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Sequence:        account.Sequence + 1,
		Direction:       input.Direction,
		Category:        input.Category,
		Amount:          input.Amount.Amount,
		Currency:        account.Currency,
		PreviousBalance: account.Balance,
		RunningBalance:  newBalance,
		Description:     input.Description,
		Reference:       input.Reference,
		Channel:         channel,
		TransactionAt:   now,
		ValueDate:       valueDate,
		CreatedBy:       actor,
	}

	if err := uc.journalRepo.Append(ctx, tx, entry); err != nil {
		return nil, storeError(err)
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, account.Sequence, entry.Sequence, now); err != nil {
		return nil, storeError(err)
	}

	account.Balance = newBalance
	account.Sequence = entry.Sequence
	account.UpdatedAt = now

	return entry, nil
}

// GetBalance returns the current balance and the sequence it reflects.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, accountID string) (*BalanceSnapshot, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}

	return &BalanceSnapshot{
		AccountID: account.ID,
		Balance:   account.BalanceMoney(),
		Sequence:  account.Sequence,
		AsOf:      uc.clock.Now().UTC(),
	}, nil
}

// GetBalanceAsOf returns the balance carried by the last entry value-dated on or before date.
func (uc *LedgerUseCase) GetBalanceAsOf(ctx context.Context, accountID string, date time.Time) (*BalanceSnapshot, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}

	balance, err := uc.journalRepo.BalanceAsOf(ctx, nil, accountID, domain.DateOf(date))
	if err != nil {
		return nil, storeError(err)
	}

	return &BalanceSnapshot{
		AccountID: account.ID,
		Balance:   domain.Money{Amount: balance, Currency: account.Currency},
		Sequence:  account.Sequence,
		AsOf:      domain.DateOf(date),
	}, nil
}

// GetJournal returns entries newest first, bounded by the sequence of the balance it reports.
func (uc *LedgerUseCase) GetJournal(ctx context.Context, accountID string, limit, offset int) (*JournalPage, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}

	entries, err := uc.journalRepo.ListByAccount(ctx, accountID, account.Sequence, limit, offset)
	if err != nil {
		return nil, storeError(err)
	}

	return &JournalPage{
		AccountID: account.ID,
		Balance:   account.BalanceMoney(),
		Sequence:  account.Sequence,
		Entries:   entries,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (uc *LedgerUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *LedgerUseCase) recordPosting(entry *domain.JournalEntry, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.Postings.WithLabelValues(string(entry.Direction), entry.Category.String()).Inc()
	uc.metrics.PostedAmount.WithLabelValues(entry.Currency, string(entry.Direction)).Add(entry.Amount.InexactFloat64())
	uc.metrics.PostingDuration.Observe(elapsed.Seconds())
}

func (uc *LedgerUseCase) recordError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.PostingErrors.WithLabelValues(ErrorType(err)).Inc()
}

func validatePostingInput(input PostingInput) error {
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidAmount, input.Amount.Amount.String())
	}
	if _, err := domain.NewMoney(input.Amount.Amount, input.Amount.Currency); err != nil {
		return err
	}
	if _, err := domain.ParseDirection(string(input.Direction)); err != nil {
		return err
	}
	if !input.Category.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCategory, input.Category)
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return err
	}
	return domain.ValidateReference(input.Reference)
}

// storeError tags store failures as ErrPersistence and leaves domain errors untouched.
func storeError(err error) error {
	if err == nil || domain.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}

// ErrorType is a stable label for metrics and logs.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, domain.ErrAccountNotPostable):
		return "account_not_postable"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrDuplicateAccrual):
		return "duplicate_accrual"
	case errors.Is(err, domain.ErrSequenceConflict):
		return "sequence_conflict"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence_failure"
	case domain.IsValidationError(err):
		return "validation"
	default:
		return "unknown"
	}
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
