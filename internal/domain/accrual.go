package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Month is a calendar month, the unit of interest accrual.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t (UTC).
func MonthOf(t time.Time) Month {
	y, m, _ := t.UTC().Date()
	return Month{Year: y, Month: m}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Compact is the YYYYMM form used in fee references.
func (m Month) Compact() string {
	return fmt.Sprintf("%04d%02d", m.Year, int(m.Month))
}

// Start is the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last calendar day of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m Month) Next() Month { return MonthOf(m.Start().AddDate(0, 1, 0)) }
func (m Month) Prev() Month { return MonthOf(m.Start().AddDate(0, -1, 0)) }

func (m Month) Before(o Month) bool {
	return m.Year < o.Year || (m.Year == o.Year && m.Month < o.Month)
}

func (m Month) After(o Month) bool { return o.Before(m) }

// MonthRange returns every month from first through last inclusive, oldest first.
func MonthRange(first, last Month) []Month {
	var months []Month
	for m := first; !m.After(last); m = m.Next() {
		months = append(months, m)
	}
	return months
}

// LastCompletedMonth is the latest month that ended strictly before asOf's month began.
func LastCompletedMonth(asOf time.Time) Month {
	return MonthOf(asOf).Prev()
}

// AccrualStatus is the outcome recorded for one accrual attempt.
type AccrualStatus string

const (
	AccrualStatusPosted  AccrualStatus = "Posted"
	AccrualStatusSkipped AccrualStatus = "Skipped"
	AccrualStatusFailed  AccrualStatus = "Failed"
)

// Settled reports whether the month needs no further processing.
func (s AccrualStatus) Settled() bool {
	return s == AccrualStatusPosted || s == AccrualStatusSkipped
}

// ParseAccrualStatus validates a status name.
func ParseAccrualStatus(s string) (AccrualStatus, error) {
	switch st := AccrualStatus(s); st {
	case AccrualStatusPosted, AccrualStatusSkipped, AccrualStatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: accrual status %q", ErrInvalidStatus, s)
}

// MonthlyAccrual records one accrual attempt for (account, month). Settled rows are unique.
type MonthlyAccrual struct {
	ID              string
	AccountID       string
	Month           Month
	Currency        string
	MonthEndBalance decimal.Decimal
	AnnualRate      decimal.Decimal
	Interest        decimal.Decimal
	PostingDate     time.Time
	ProcessedAt     time.Time
	Status          AccrualStatus
	TransactionID   string
	FailureReason   string
}

// InterestReference is the journal reference of an accrual posting.
func InterestReference(m Month) string {
	return "INT-" + m.String()
}

// InterestDescription is the journal description of an accrual posting.
func InterestDescription(m Month) string {
	return fmt.Sprintf("Monthly interest - %s (30/360)", m)
}

// FeeReference is the journal reference of a monthly maintenance fee.
func FeeReference(m Month) string {
	return "FEE-" + m.Compact()
}
