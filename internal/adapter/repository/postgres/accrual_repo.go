package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coreledger/internal/usecase"
)

const accrualSettledKey = "monthly_accruals_settled_key"

// AccrualRepository implements usecase.AccrualRepository over monthly_accruals.
type AccrualRepository struct {
	queries *generated.Queries
}

// NewAccrualRepository creates a new AccrualRepository.
func NewAccrualRepository(db generated.DBTX) *AccrualRepository {
	return &AccrualRepository{queries: generated.New(db)}
}

// Create inserts an accrual row inside tx. The partial unique index rejects a second settled row.
func (r *AccrualRepository) Create(ctx context.Context, tx usecase.Transaction, accrual *domain.MonthlyAccrual) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateMonthlyAccrual(ctx, generated.CreateMonthlyAccrualParams{
		ID:              accrual.ID,
		AccountID:       accrual.AccountID,
		AccrualMonth:    monthToPg(accrual.Month),
		Currency:        accrual.Currency,
		MonthEndBalance: decimalToNumeric(accrual.MonthEndBalance),
		AnnualRate:      decimalToNumeric(accrual.AnnualRate),
		Interest:        decimalToNumeric(accrual.Interest),
		PostingDate:     dateToPg(accrual.PostingDate),
		ProcessedAt:     timeToPgTimestamptz(accrual.ProcessedAt),
		Status:          string(accrual.Status),
		TransactionID:   textOrNull(accrual.TransactionID),
		FailureReason:   accrual.FailureReason,
	})
	if isUniqueViolation(err, accrualSettledKey) {
		return domain.ErrDuplicateAccrual
	}

	return err
}

// GetSettled returns the settled row for (account, month). A nil tx reads outside any transaction.
func (r *AccrualRepository) GetSettled(
	ctx context.Context,
	tx usecase.Transaction,
	accountID string,
	month domain.Month,
) (*domain.MonthlyAccrual, bool, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, false, err
	}

	row, err := queries.GetSettledAccrual(ctx, generated.GetSettledAccrualParams{
		AccountID:    accountID,
		AccrualMonth: monthToPg(month),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return rowToAccrual(row), true, nil
}

// SettledMonths lists settled months in [from, to], oldest first.
func (r *AccrualRepository) SettledMonths(ctx context.Context, accountID string, from, to domain.Month) ([]domain.Month, error) {
	dates, err := r.queries.ListSettledMonths(ctx, generated.ListSettledMonthsParams{
		AccountID:      accountID,
		AccrualMonth:   monthToPg(from),
		AccrualMonth_2: monthToPg(to),
	})
	if err != nil {
		return nil, err
	}

	months := make([]domain.Month, len(dates))
	for i, d := range dates {
		months[i] = domain.MonthOf(d.Time)
	}

	return months, nil
}

// LastPostedMonth returns the most recent Posted month, false when none.
func (r *AccrualRepository) LastPostedMonth(ctx context.Context, accountID string) (domain.Month, bool, error) {
	last, err := r.queries.GetLastPostedMonth(ctx, accountID)
	if err != nil {
		return domain.Month{}, false, err
	}
	if !last.Valid {
		return domain.Month{}, false, nil
	}

	return domain.MonthOf(last.Time), true, nil
}

// List returns accrual rows, newest first.
func (r *AccrualRepository) List(ctx context.Context, filter domain.AccrualFilter) ([]*domain.MonthlyAccrual, error) {
	rows, err := r.queries.ListMonthlyAccruals(ctx, generated.ListMonthlyAccrualsParams{
		AccountID: textOrNull(filter.AccountID),
		Status:    textOrNull(string(filter.Status)),
		Limit:     limitOrAll(filter.Limit),
		Offset:    int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	accruals := make([]*domain.MonthlyAccrual, len(rows))
	for i, row := range rows {
		accruals[i] = rowToAccrual(row)
	}

	return accruals, nil
}

func rowToAccrual(row generated.MonthlyAccrual) *domain.MonthlyAccrual {
	return &domain.MonthlyAccrual{
		ID:              row.ID,
		AccountID:       row.AccountID,
		Month:           domain.MonthOf(row.AccrualMonth.Time),
		Currency:        row.Currency,
		MonthEndBalance: numericToDecimal(row.MonthEndBalance),
		AnnualRate:      numericToDecimal(row.AnnualRate),
		Interest:        numericToDecimal(row.Interest),
		PostingDate:     pgDateToTime(row.PostingDate),
		ProcessedAt:     row.ProcessedAt.Time,
		Status:          domain.AccrualStatus(row.Status),
		TransactionID:   row.TransactionID.String,
		FailureReason:   row.FailureReason,
	}
}

var _ usecase.AccrualRepository = (*AccrualRepository)(nil)
