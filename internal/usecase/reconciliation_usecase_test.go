package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
	"github.com/iho/coreledger/internal/usecase"
	"github.com/iho/coreledger/internal/usecase/mocks"
)

func TestReconcileAccount(t *testing.T) {
	tests := []struct {
		name       string
		account    *domain.Account
		summary    *domain.JournalSummary
		reconciled bool
		difference string
	}{
		{
			name:    "matching journal",
			account: &domain.Account{ID: "acc-1", Currency: "USD", Balance: decimal.NewFromInt(150), Sequence: 2},
			summary: &domain.JournalSummary{
				Count: 2, SignedSum: decimal.NewFromInt(150), LastSequence: 2, LastRunningBalance: decimal.NewFromInt(150),
			},
			reconciled: true,
			difference: "0",
		},
		{
			name:       "empty account",
			account:    &domain.Account{ID: "acc-1", Currency: "USD", Balance: decimal.Zero},
			summary:    &domain.JournalSummary{SignedSum: decimal.Zero, LastRunningBalance: decimal.Zero},
			reconciled: true,
			difference: "0",
		},
		{
			name:    "balance drift",
			account: &domain.Account{ID: "acc-1", Currency: "USD", Balance: decimal.NewFromInt(160), Sequence: 2},
			summary: &domain.JournalSummary{
				Count: 2, SignedSum: decimal.NewFromInt(150), LastSequence: 2, LastRunningBalance: decimal.NewFromInt(150),
			},
			reconciled: false,
			difference: "10",
		},
		{
			name:    "missing entry",
			account: &domain.Account{ID: "acc-1", Currency: "USD", Balance: decimal.NewFromInt(150), Sequence: 2},
			summary: &domain.JournalSummary{
				Count: 1, SignedSum: decimal.NewFromInt(150), LastSequence: 2, LastRunningBalance: decimal.NewFromInt(150),
			},
			reconciled: false,
			difference: "0",
		},
		{
			name:    "running balance broken",
			account: &domain.Account{ID: "acc-1", Currency: "USD", Balance: decimal.NewFromInt(150), Sequence: 2},
			summary: &domain.JournalSummary{
				Count: 2, SignedSum: decimal.NewFromInt(150), LastSequence: 2, LastRunningBalance: decimal.NewFromInt(140),
			},
			reconciled: false,
			difference: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			accounts := mocks.NewMockAccountRepository(ctrl)
			journal := mocks.NewMockJournalRepository(ctrl)

			accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(tt.account, nil)
			journal.EXPECT().Summarize(gomock.Any(), "acc-1").Return(tt.summary, nil)

			m := metrics.NewWithRegistry(prometheus.NewRegistry())
			uc := usecase.NewReconciliationUseCase(accounts, journal, newClock("2024-05-01"), m)

			result, err := uc.ReconcileAccount(context.Background(), "acc-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsReconciled != tt.reconciled {
				t.Fatalf("IsReconciled = %v, want %v (%+v)", result.IsReconciled, tt.reconciled, result)
			}
			if result.Difference.String() != tt.difference {
				t.Fatalf("Difference = %s, want %s", result.Difference, tt.difference)
			}

			wantFailures := 0.0
			if !tt.reconciled {
				wantFailures = 1
			}
			if got := testutil.ToFloat64(m.ReconciliationFailures); got != wantFailures {
				t.Fatalf("failure metric = %v, want %v", got, wantFailures)
			}
		})
	}
}

func TestReconcileAccount_RereadsAfterConcurrentPosting(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	journal := mocks.NewMockJournalRepository(ctrl)

	gomock.InOrder(
		accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(100), Sequence: 1}, nil),
		journal.EXPECT().Summarize(gomock.Any(), "acc-1").Return(&domain.JournalSummary{
			Count: 2, SignedSum: decimal.NewFromInt(150), LastSequence: 2, LastRunningBalance: decimal.NewFromInt(150),
		}, nil),
		accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(150), Sequence: 2}, nil),
		journal.EXPECT().Summarize(gomock.Any(), "acc-1").Return(&domain.JournalSummary{
			Count: 2, SignedSum: decimal.NewFromInt(150), LastSequence: 2, LastRunningBalance: decimal.NewFromInt(150),
		}, nil),
	)

	uc := usecase.NewReconciliationUseCase(accounts, journal, nil, nil)
	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsReconciled {
		t.Fatalf("expected reconciled after re-read, got %+v", result)
	}
}

func TestReconcileAccount_RereadsBusyAccountUntilStable(t *testing.T) {
	tests := []struct {
		name       string
		racing     int
		reads      int
		reconciled bool
	}{
		{name: "settles on the fourth read", racing: 3, reads: 4, reconciled: true},
		{name: "gives up after five reads", racing: 10, reads: 5, reconciled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			accounts := mocks.NewMockAccountRepository(ctrl)
			journal := mocks.NewMockJournalRepository(ctrl)

			// Each read sees the account one posting behind the journal until racing stops.
			var calls []any
			for i := 1; i <= tt.reads; i++ {
				seq := int64(i)
				balance := decimal.NewFromInt(seq * 10)
				journalSeq := seq
				if i <= tt.racing {
					journalSeq = seq + 1
				}
				journalSum := decimal.NewFromInt(journalSeq * 10)
				calls = append(calls,
					accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", Balance: balance, Sequence: seq}, nil),
					journal.EXPECT().Summarize(gomock.Any(), "acc-1").Return(&domain.JournalSummary{
						Count: journalSeq, SignedSum: journalSum, LastSequence: journalSeq, LastRunningBalance: journalSum,
					}, nil),
				)
			}
			gomock.InOrder(calls...)

			m := metrics.NewWithRegistry(prometheus.NewRegistry())
			uc := usecase.NewReconciliationUseCase(accounts, journal, nil, m)
			result, err := uc.ReconcileAccount(context.Background(), "acc-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsReconciled != tt.reconciled {
				t.Fatalf("IsReconciled = %v, want %v (%+v)", result.IsReconciled, tt.reconciled, result)
			}

			wantFailures := 0.0
			if !tt.reconciled {
				wantFailures = 1
			}
			if got := testutil.ToFloat64(m.ReconciliationFailures); got != wantFailures {
				t.Fatalf("failure metric = %v, want %v", got, wantFailures)
			}
		})
	}
}

func TestReconcileAccount_PropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	journal := mocks.NewMockJournalRepository(ctrl)

	accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1"}, nil)
	journal.EXPECT().Summarize(gomock.Any(), "acc-1").Return(nil, errors.New("db down"))

	uc := usecase.NewReconciliationUseCase(accounts, journal, nil, nil)
	if _, err := uc.ReconcileAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	env := newLedgerEnv(t, "2024-01-15")
	p := env.newProduct(t, "SAV", "0.06", "", "")
	for i := 0; i < 3; i++ {
		acc := env.open(t, p.ID, "100.00", "2024-01-15")
		if _, err := env.ledger.Debit(context.Background(), usecase.ManualPostingInput{AccountID: acc.ID, Amount: "40.00"}); err != nil {
			t.Fatalf("debit: %v", err)
		}
	}
	env.clock.Set("2024-03-01")
	if _, err := env.batch.RunMonthlyAccruals(context.Background(), usecase.RunAccrualsInput{}); err != nil {
		t.Fatalf("accruals: %v", err)
	}

	report, err := env.reconcil.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalAccounts != 3 || report.ReconciledAccounts != 3 || len(report.Discrepancies) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
