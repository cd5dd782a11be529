package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a posting.
type Direction string

const (
	DirectionCredit Direction = "Credit"
	DirectionDebit  Direction = "Debit"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionCredit, DirectionDebit:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Signed returns amount with the sign this direction applies to a balance.
func (d Direction) Signed(amount decimal.Decimal) decimal.Decimal {
	if d == DirectionDebit {
		return amount.Neg()
	}
	return amount
}

// Category classifies a journal entry. The zero value is invalid.
type Category uint8

const (
	categoryUnknown Category = iota
	CategoryDeposit
	CategoryWithdrawal
	CategoryInterest
	CategoryFee
	CategoryTransfer
	CategoryAdjustment
	categoryEnd
)

var categoryNames = [...]string{
	categoryUnknown:    "",
	CategoryDeposit:    "Deposit",
	CategoryWithdrawal: "Withdrawal",
	CategoryInterest:   "Interest",
	CategoryFee:        "Fee",
	CategoryTransfer:   "Transfer",
	CategoryAdjustment: "Adjustment",
}

// ParseCategory maps a stored or transported name to a Category.
func ParseCategory(s string) (Category, error) {
	for c := CategoryDeposit; c < categoryEnd; c++ {
		if categoryNames[c] == s {
			return c, nil
		}
	}
	return categoryUnknown, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c > categoryUnknown && c < categoryEnd
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// JournalEntry is one immutable posting against an account. Corrections are new entries.
type JournalEntry struct {
	ID              string
	AccountID       string
	Sequence        int64
	Direction       Direction
	Category        Category
	Amount          decimal.Decimal
	Currency        string
	PreviousBalance decimal.Decimal
	RunningBalance  decimal.Decimal
	Description     string
	Reference       string
	Channel         string
	TransactionAt   time.Time
	ValueDate       time.Time
	CreatedBy       string
}

// SignedAmount is the entry's effect on the balance.
func (e *JournalEntry) SignedAmount() decimal.Decimal {
	return e.Direction.Signed(e.Amount)
}

// JournalSummary aggregates an account's journal for reconciliation.
type JournalSummary struct {
	Count              int64
	SignedSum          decimal.Decimal
	LastSequence       int64
	LastRunningBalance decimal.Decimal
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}
