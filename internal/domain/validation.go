package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidRate        = errors.New("invalid interest rate")
)

// Validation constants
const (
	MaxDescriptionLength = 500
	MaxReferenceLength   = 100
	MaxChannelLength     = 50
	MaxPageSize          = 1000
	DefaultPageSize      = 50
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "CHF": true,
	"CNY": true, "AUD": true, "CAD": true, "SEK": true,
	"NZD": true, "SGD": true, "NOK": true, "MXN": true,
	"INR": true, "BRL": true, "ZAR": true, "HKD": true,
	"PHP": true, "TRY": true, "PLN": true, "DKK": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateDescription validates a journal entry description
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}
	return nil
}

// ValidateReference validates a journal entry reference
func ValidateReference(reference string) error {
	if utf8.RuneCountInString(reference) > MaxReferenceLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidReference, MaxReferenceLength)
	}
	if strings.ContainsAny(reference, "\r\n\t") {
		return fmt.Errorf("%w: contains control characters", ErrInvalidReference)
	}
	return nil
}

// ValidateRate validates an annual interest rate expressed as a fraction (0.06 = 6%).
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidRate)
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s is above 100%%", ErrInvalidRate, rate.String())
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
