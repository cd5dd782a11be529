package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencyScale is the number of fractional digits for every supported currency.
const DefaultCurrencyScale int32 = 2

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Money is an exact fixed-point amount tagged with its ISO 4217 currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// CurrencyScale returns the fractional precision used for currency.
func CurrencyScale(currency string) int32 {
	return DefaultCurrencyScale
}

// Zero returns a zero amount in currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// ParseMoney parses a non-negative decimal string at the boundary.
// Signs, exponents and more fractional digits than the currency allows are rejected.
func ParseMoney(s, currency string) (Money, error) {
	if err := ValidateCurrency(currency); err != nil {
		return Money{}, err
	}
	currency = normalizeCurrency(currency)

	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return Money{}, fmt.Errorf("%w: %q is not a non-negative decimal", ErrInvalidAmount, s)
	}

	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		if digits := len(s) - dot - 1; int32(digits) > CurrencyScale(currency) {
			return Money{}, fmt.Errorf("%w: %q has %d fractional digits, %s allows %d",
				ErrInvalidAmount, s, digits, currency, CurrencyScale(currency))
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return Money{Amount: d, Currency: currency}, nil
}

// NewMoney builds Money from a decimal that must already fit the currency scale.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if err := ValidateCurrency(currency); err != nil {
		return Money{}, err
	}
	currency = normalizeCurrency(currency)

	if !amount.Equal(amount.Truncate(CurrencyScale(currency))) {
		return Money{}, fmt.Errorf("%w: %s exceeds %s precision", ErrInvalidAmount, amount.String(), currency)
	}

	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney is NewMoney for literals known to be valid.
func MustMoney(amount, currency string) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub returns m - o.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Cmp compares amounts; currencies are assumed equal.
func (m Money) Cmp(o Money) int {
	return m.Amount.Cmp(o.Amount)
}

func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsZero() bool     { return m.Amount.IsZero() }

// String formats the amount at the currency scale, e.g. "1010.00".
func (m Money) String() string {
	return m.Amount.StringFixed(CurrencyScale(m.Currency))
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.String(), Currency: m.Currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := NewMoney(d, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
