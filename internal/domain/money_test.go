package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		currency string
		want     string
		wantErr  error
	}{
		{name: "integer", input: "100", currency: "USD", want: "100.00"},
		{name: "two decimals", input: "10.25", currency: "usd", want: "10.25"},
		{name: "one decimal", input: "0.5", currency: "EUR", want: "0.50"},
		{name: "surrounding space", input: " 7.10 ", currency: "USD", want: "7.10"},
		{name: "zero is parseable", input: "0", currency: "USD", want: "0.00"},
		{name: "too many decimals", input: "1.001", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "trailing zero beyond scale", input: "1.000", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "negative", input: "-5.00", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "explicit plus", input: "+5.00", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "exponent", input: "1e3", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "empty", input: "", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "letters", input: "ten", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "dangling dot", input: "5.", currency: "USD", wantErr: ErrInvalidAmount},
		{name: "unknown currency", input: "5", currency: "XXX", wantErr: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input, tt.currency)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.String())
			}
		})
	}
}

func TestNewMoney_RejectsOverScale(t *testing.T) {
	if _, err := NewMoney(decimal.RequireFromString("1.005"), "USD"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := NewMoney(decimal.RequireFromString("1.50"), "USD"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("10.10", "USD")
	b := MustMoney("0.20", "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.String() != "10.30" {
		t.Errorf("expected 10.30, got %s", sum)
	}

	diff, err := b.Sub(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff.String() != "-9.90" || !diff.IsNegative() {
		t.Errorf("expected -9.90, got %s", diff)
	}

	if _, err := a.Add(MustMoney("1", "EUR")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestMoney_NoFloatDrift(t *testing.T) {
	total := Zero("USD")
	step := MustMoney("0.10", "USD")
	for i := 0; i < 1000; i++ {
		var err error
		total, err = total.Add(step)
		if err != nil {
			t.Fatal(err)
		}
	}
	if total.String() != "100.00" {
		t.Errorf("expected 100.00, got %s", total)
	}
}

func TestMoney_JSON(t *testing.T) {
	m := MustMoney("-12.5", "USD")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"amount":"-12.50","currency":"USD"}` {
		t.Errorf("unexpected json: %s", data)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(m) {
		t.Errorf("expected %v, got %v", m, back)
	}
}
