package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

type stubRunner struct {
	mu         sync.Mutex
	accruals   int
	fees       int
	accrualErr error
	ran        chan struct{}
}

func (s *stubRunner) RunMonthlyAccruals(ctx context.Context, input usecase.RunAccrualsInput) (*usecase.BatchResult, error) {
	s.mu.Lock()
	s.accruals++
	s.mu.Unlock()
	if s.ran != nil {
		select {
		case s.ran <- struct{}{}:
		default:
		}
	}
	if s.accrualErr != nil {
		return nil, s.accrualErr
	}
	return &usecase.BatchResult{AccountsProcessed: 2, MonthsProcessed: 3}, nil
}

func (s *stubRunner) ApplyMonthlyFees(ctx context.Context, asOf time.Time) (*usecase.FeeBatchResult, error) {
	s.mu.Lock()
	s.fees++
	s.mu.Unlock()
	return &usecase.FeeBatchResult{Month: domain.Month{Year: 2024, Month: time.February}}, nil
}

func (s *stubRunner) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accruals, s.fees
}

func TestTickRunsAccrualsAndFees(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{}
	w := NewAccrualWorker(Config{Runner: runner, Logger: zerolog.New(&buf), ChargeFees: true})

	w.tick(context.Background())

	accruals, fees := runner.counts()
	if accruals != 1 || fees != 1 {
		t.Fatalf("expected one accrual and one fee run, got %d/%d", accruals, fees)
	}
	if !strings.Contains(buf.String(), `"months_processed":3`) {
		t.Fatalf("expected run summary in log, got %s", buf.String())
	}
}

func TestTickSkipsFeesWhenDisabled(t *testing.T) {
	runner := &stubRunner{}
	w := NewAccrualWorker(Config{Runner: runner, Logger: zerolog.Nop()})

	w.tick(context.Background())

	if _, fees := runner.counts(); fees != 0 {
		t.Fatalf("fees must not run when disabled, got %d", fees)
	}
}

func TestTickToleratesBatchInProgress(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{accrualErr: usecase.ErrBatchInProgress}
	w := NewAccrualWorker(Config{Runner: runner, Logger: zerolog.New(&buf)})

	w.tick(context.Background())

	if strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("lock contention should not log an error, got %s", buf.String())
	}
}

func TestTickLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{accrualErr: errors.New("db down")}
	w := NewAccrualWorker(Config{Runner: runner, Logger: zerolog.New(&buf)})

	w.tick(context.Background())

	if !strings.Contains(buf.String(), "db down") {
		t.Fatalf("expected failure in log, got %s", buf.String())
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	runner := &stubRunner{ran: make(chan struct{}, 1)}
	w := NewAccrualWorker(Config{Runner: runner, Logger: zerolog.Nop(), Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-runner.ran:
	case <-time.After(time.Second):
		t.Fatalf("worker did not run on start")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after cancellation")
	}
}
