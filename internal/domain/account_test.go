package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		overdraft   decimal.Decimal
		debitAmount decimal.Decimal
		expectError bool
	}{
		{
			name:        "no overdraft - debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expectError: true,
		},
		{
			name:        "no overdraft - debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			expectError: false,
		},
		{
			name:        "no overdraft - debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(50),
			expectError: false,
		},
		{
			name:        "overdraft - debit into allowance",
			balance:     decimal.NewFromInt(100),
			overdraft:   decimal.NewFromInt(200),
			debitAmount: decimal.NewFromInt(300),
			expectError: false,
		},
		{
			name:        "overdraft - debit past allowance",
			balance:     decimal.NewFromInt(100),
			overdraft:   decimal.NewFromInt(200),
			debitAmount: decimal.RequireFromString("300.01"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{
				Currency:       "USD",
				Balance:        tt.balance,
				OverdraftLimit: tt.overdraft,
			}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_InsufficientFundsDetails(t *testing.T) {
	acc := &Account{Currency: "USD", Balance: decimal.NewFromInt(100)}

	err := acc.ValidateDebit(decimal.NewFromInt(150))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "attempted 150.00") || !strings.Contains(err.Error(), "available 100.00") {
		t.Errorf("error should carry attempted and available amounts: %v", err)
	}
}

func TestAccount_ValidatePostable(t *testing.T) {
	for _, status := range []AccountStatus{AccountStatusFrozen, AccountStatusDormant, AccountStatusClosed} {
		acc := &Account{ID: "acc-1", Status: status}
		if err := acc.ValidatePostable(); !errors.Is(err, ErrAccountNotPostable) {
			t.Errorf("%s: expected ErrAccountNotPostable, got %v", status, err)
		}
	}

	acc := &Account{Status: AccountStatusActive}
	if err := acc.ValidatePostable(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAccount_Apply(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}

	if got := acc.Apply(DirectionCredit, decimal.NewFromInt(25)); !got.Equal(decimal.NewFromInt(125)) {
		t.Errorf("credit: expected 125, got %s", got)
	}
	if got := acc.Apply(DirectionDebit, decimal.NewFromInt(25)); !got.Equal(decimal.NewFromInt(75)) {
		t.Errorf("debit: expected 75, got %s", got)
	}
	if !acc.Balance.Equal(decimal.NewFromInt(100)) {
		t.Error("Apply must not mutate the account")
	}
}

func TestAccount_CanTransitionTo(t *testing.T) {
	closed := &Account{Status: AccountStatusClosed}
	if err := closed.CanTransitionTo(AccountStatusActive); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected closed to be terminal, got %v", err)
	}

	funded := &Account{Status: AccountStatusActive, Balance: decimal.NewFromInt(1)}
	if err := funded.CanTransitionTo(AccountStatusClosed); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected non-zero balance to block closing, got %v", err)
	}
	if err := funded.CanTransitionTo(AccountStatusFrozen); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseAccountStatus(t *testing.T) {
	if _, err := ParseAccountStatus("Suspended"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if st, err := ParseAccountStatus("Dormant"); err != nil || st != AccountStatusDormant {
		t.Errorf("unexpected result %q %v", st, err)
	}
}
