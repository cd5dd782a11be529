package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInterestFor(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		rate    string
		minimum string
		want    string
	}{
		{name: "standard month", balance: "1000.00", rate: "0.06", minimum: "0", want: "5.00"},
		{name: "below threshold", balance: "500.00", rate: "0.06", minimum: "1000.00", want: "0.00"},
		{name: "exactly at threshold", balance: "1000.00", rate: "0.06", minimum: "1000.00", want: "5.00"},
		{name: "zero balance", balance: "0", rate: "0.06", minimum: "0", want: "0.00"},
		{name: "negative balance", balance: "-250.00", rate: "0.06", minimum: "0", want: "0.00"},
		{name: "zero rate", balance: "1000.00", rate: "0", minimum: "0", want: "0.00"},
		{name: "tie rounds to even, stays", balance: "1005.00", rate: "0.06", minimum: "0", want: "5.02"},
		{name: "tie rounds to even, goes up", balance: "1003.00", rate: "0.06", minimum: "0", want: "5.02"},
		{name: "sub-cent remainder dropped", balance: "1234.56", rate: "0.035", minimum: "0", want: "3.60"},
		{name: "below half rounds down", balance: "1000.00", rate: "0.001", minimum: "0", want: "0.08"},
		{name: "large balance", balance: "12345678.90", rate: "0.0425", minimum: "100", want: "43724.28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterestFor(
				MustMoney(tt.balance, "USD"),
				decimal.RequireFromString(tt.rate),
				MustMoney(tt.minimum, "USD"),
			)
			if got.String() != tt.want {
				t.Errorf("InterestFor(%s, %s, %s) = %s, want %s", tt.balance, tt.rate, tt.minimum, got, tt.want)
			}
			if got.Currency != "USD" {
				t.Errorf("expected USD, got %s", got.Currency)
			}
		})
	}
}

func TestInterestFor_IgnoresCalendarLength(t *testing.T) {
	// Same balance, same result: the calculator has no notion of the month at all.
	a := InterestFor(MustMoney("2400.00", "EUR"), decimal.RequireFromString("0.05"), Zero("EUR"))
	if a.String() != "10.00" {
		t.Errorf("expected 10.00, got %s", a)
	}
}
