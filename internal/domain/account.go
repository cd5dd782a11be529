package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "Active"
	AccountStatusFrozen  AccountStatus = "Frozen"
	AccountStatusDormant AccountStatus = "Dormant"
	AccountStatusClosed  AccountStatus = "Closed"
)

// ParseAccountStatus validates a status name.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(s); st {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusDormant, AccountStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Account is a customer deposit account. Balance and Sequence change only through postings.
type Account struct {
	ID             string
	CustomerID     string
	ProductID      string
	Currency       string
	Balance        decimal.Decimal
	OverdraftLimit decimal.Decimal
	Status         AccountStatus
	OpeningDate    time.Time
	ClosingDate    *time.Time
	Sequence       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BalanceMoney returns the balance tagged with the account currency.
func (a *Account) BalanceMoney() Money {
	return Money{Amount: a.Balance, Currency: a.Currency}
}

// Floor is the lowest balance a debit may leave behind.
func (a *Account) Floor() decimal.Decimal {
	return a.OverdraftLimit.Neg()
}

// Available is the amount that can still be debited.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Floor())
}

// ValidatePostable checks the account accepts postings.
func (a *Account) ValidatePostable() error {
	if a.Status != AccountStatusActive {
		return fmt.Errorf("%w: account %s is %s", ErrAccountNotPostable, a.ID, a.Status)
	}
	return nil
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).LessThan(a.Floor()) {
		return fmt.Errorf("%w: attempted %s, available %s",
			ErrInsufficientFunds,
			amount.StringFixed(CurrencyScale(a.Currency)),
			a.Available().StringFixed(CurrencyScale(a.Currency)))
	}
	return nil
}

// Apply returns the balance after moving amount in direction.
func (a *Account) Apply(direction Direction, amount decimal.Decimal) decimal.Decimal {
	if direction == DirectionDebit {
		return a.Balance.Sub(amount)
	}
	return a.Balance.Add(amount)
}

// CanTransitionTo reports whether the status change is allowed. Closed is terminal.
func (a *Account) CanTransitionTo(next AccountStatus) error {
	if a.Status == AccountStatusClosed {
		return fmt.Errorf("%w: account %s is closed", ErrInvalidStatus, a.ID)
	}
	if next == AccountStatusClosed && !a.Balance.IsZero() {
		return fmt.Errorf("%w: balance must be zero to close, is %s",
			ErrInvalidStatus, a.Balance.StringFixed(CurrencyScale(a.Currency)))
	}
	return nil
}
