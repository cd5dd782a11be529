package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/usecase"
)

// BatchRunner is the part of the batch use case the worker drives.
type BatchRunner interface {
	RunMonthlyAccruals(ctx context.Context, input usecase.RunAccrualsInput) (*usecase.BatchResult, error)
	ApplyMonthlyFees(ctx context.Context, asOf time.Time) (*usecase.FeeBatchResult, error)
}

// Config for AccrualWorker.
type Config struct {
	Runner     BatchRunner
	Logger     zerolog.Logger
	Interval   time.Duration // Polling interval
	ChargeFees bool
}

// AccrualWorker periodically runs the monthly accrual batch. Catch-up and
// idempotent settlement make repeated ticks within a month no-ops.
type AccrualWorker struct {
	runner     BatchRunner
	logger     zerolog.Logger
	interval   time.Duration
	chargeFees bool
}

// NewAccrualWorker creates a new AccrualWorker.
func NewAccrualWorker(cfg Config) *AccrualWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	return &AccrualWorker{
		runner:     cfg.Runner,
		logger:     cfg.Logger.With().Str("component", "accrual_worker").Logger(),
		interval:   cfg.Interval,
		chargeFees: cfg.ChargeFees,
	}
}

// Start runs one pass immediately and then one per interval until ctx is cancelled.
func (w *AccrualWorker) Start(ctx context.Context) error {
	w.logger.Info().
		Dur("interval", w.interval).
		Bool("charge_fees", w.chargeFees).
		Msg("accrual worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("accrual worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *AccrualWorker) tick(ctx context.Context) {
	result, err := w.runner.RunMonthlyAccruals(ctx, usecase.RunAccrualsInput{})
	switch {
	case errors.Is(err, usecase.ErrBatchInProgress):
		w.logger.Info().Msg("accrual batch running elsewhere, skipping tick")
	case err != nil:
		w.logger.Error().Err(err).Msg("accrual batch failed")
	default:
		w.logger.Info().
			Int("accounts_processed", result.AccountsProcessed).
			Int("accounts_failed", result.AccountsFailed).
			Int("months_processed", result.MonthsProcessed).
			Bool("interrupted", result.Interrupted).
			Msg("accrual batch finished")
	}

	if !w.chargeFees || ctx.Err() != nil {
		return
	}

	fees, err := w.runner.ApplyMonthlyFees(ctx, time.Time{})
	switch {
	case errors.Is(err, usecase.ErrBatchInProgress):
		w.logger.Info().Msg("fee batch running elsewhere, skipping tick")
	case err != nil:
		w.logger.Error().Err(err).Msg("fee batch failed")
	default:
		w.logger.Info().
			Str("month", fees.Month.String()).
			Int("accounts_charged", fees.AccountsCharged).
			Int("accounts_failed", fees.AccountsFailed).
			Msg("fee batch finished")
	}
}
