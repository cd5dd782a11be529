package domain

import (
	"errors"
	"testing"
	"time"
)

func TestMonth_Boundaries(t *testing.T) {
	tests := []struct {
		month   Month
		wantEnd string
		next    string
		prev    string
	}{
		{month: Month{2024, time.February}, wantEnd: "2024-02-29", next: "2024-03", prev: "2024-01"},
		{month: Month{2023, time.February}, wantEnd: "2023-02-28", next: "2023-03", prev: "2023-01"},
		{month: Month{2024, time.December}, wantEnd: "2024-12-31", next: "2025-01", prev: "2024-11"},
		{month: Month{2024, time.January}, wantEnd: "2024-01-31", next: "2024-02", prev: "2023-12"},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			if got := tt.month.End().Format(DateLayout); got != tt.wantEnd {
				t.Errorf("End() = %s, want %s", got, tt.wantEnd)
			}
			if got := tt.month.Next().String(); got != tt.next {
				t.Errorf("Next() = %s, want %s", got, tt.next)
			}
			if got := tt.month.Prev().String(); got != tt.prev {
				t.Errorf("Prev() = %s, want %s", got, tt.prev)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != (Month{2024, time.March}) {
		t.Errorf("unexpected month %v", m)
	}

	if _, err := ParseMonth("2024-13"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestMonthRange(t *testing.T) {
	got := MonthRange(Month{2023, time.November}, Month{2024, time.February})
	want := []string{"2023-11", "2023-12", "2024-01", "2024-02"}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("month %d = %s, want %s", i, got[i], want[i])
		}
	}

	if empty := MonthRange(Month{2024, time.March}, Month{2024, time.February}); len(empty) != 0 {
		t.Errorf("expected empty range, got %v", empty)
	}
}

func TestLastCompletedMonth(t *testing.T) {
	asOf := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	if got := LastCompletedMonth(asOf).String(); got != "2024-03" {
		t.Errorf("expected 2024-03, got %s", got)
	}

	asOf = time.Date(2024, time.April, 30, 23, 59, 0, 0, time.UTC)
	if got := LastCompletedMonth(asOf).String(); got != "2024-03" {
		t.Errorf("current month must never be complete, got %s", got)
	}
}

func TestAccrualStatus_Settled(t *testing.T) {
	if !AccrualStatusPosted.Settled() || !AccrualStatusSkipped.Settled() {
		t.Error("posted and skipped must be settled")
	}
	if AccrualStatusFailed.Settled() {
		t.Error("failed must be retryable")
	}
}

func TestAccrualReferences(t *testing.T) {
	m := Month{2024, time.February}
	if got := InterestReference(m); got != "INT-2024-02" {
		t.Errorf("unexpected interest reference %s", got)
	}
	if got := InterestDescription(m); got != "Monthly interest - 2024-02 (30/360)" {
		t.Errorf("unexpected description %s", got)
	}
	if got := FeeReference(m); got != "FEE-202402" {
		t.Errorf("unexpected fee reference %s", got)
	}
}
