package domain

import "github.com/shopspring/decimal"

// 30/360: every month counts 30 days and every year 360 regardless of the calendar.
const (
	DaysPerAccrualMonth = 30
	DaysPerAccrualYear  = 360
)

var (
	accrualDays = decimal.NewFromInt(DaysPerAccrualMonth)
	accrualYear = decimal.NewFromInt(DaysPerAccrualYear)
	two         = decimal.NewFromInt(2)
)

// InterestFor computes one month of interest on a month-end balance under 30/360,
// rounded half-even to the currency scale. Balances below the minimum, non-positive
// balances and non-positive rates earn nothing.
func InterestFor(monthEndBalance Money, annualRate decimal.Decimal, minimumBalance Money) Money {
	zero := Zero(monthEndBalance.Currency)

	if monthEndBalance.Amount.LessThan(minimumBalance.Amount) {
		return zero
	}
	if !monthEndBalance.IsPositive() || !annualRate.IsPositive() {
		return zero
	}

	numerator := monthEndBalance.Amount.Mul(annualRate).Mul(accrualDays)
	return Money{
		Amount:   divRoundHalfEven(numerator, accrualYear, CurrencyScale(monthEndBalance.Currency)),
		Currency: monthEndBalance.Currency,
	}
}

// divRoundHalfEven returns n/d rounded half-even to scale digits using an exact
// integer quotient and remainder. n and d must be positive.
func divRoundHalfEven(n, d decimal.Decimal, scale int32) decimal.Decimal {
	q, r := n.Shift(scale).QuoRem(d, 0)

	switch r.Mul(two).Cmp(d) {
	case 1:
		q = q.Add(decimal.NewFromInt(1))
	case 0:
		if q.Mod(two).Sign() != 0 {
			q = q.Add(decimal.NewFromInt(1))
		}
	}

	return q.Shift(-scale)
}
