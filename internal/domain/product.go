package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product holds the pricing terms accounts are opened against.
type Product struct {
	ID                        string
	Code                      string
	Name                      string
	Currency                  string
	AnnualInterestRate        decimal.Decimal
	MinimumBalanceForInterest decimal.Decimal
	MonthlyMaintenanceFee     decimal.Decimal
	TransactionFee            decimal.Decimal
	OverdraftLimit            decimal.Decimal
	CreatedAt                 time.Time
}

// MinimumBalance returns the interest threshold in the product currency.
func (p *Product) MinimumBalance() Money {
	return Money{Amount: p.MinimumBalanceForInterest, Currency: p.Currency}
}

// MaintenanceFee returns the monthly fee in the product currency.
func (p *Product) MaintenanceFee() Money {
	return Money{Amount: p.MonthlyMaintenanceFee, Currency: p.Currency}
}

// DebitFee returns the fee charged alongside each customer debit.
func (p *Product) DebitFee() Money {
	return Money{Amount: p.TransactionFee, Currency: p.Currency}
}
