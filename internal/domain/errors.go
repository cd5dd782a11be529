package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountNotPostable = errors.New("account is not postable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidStatus      = errors.New("invalid account status")
	ErrSequenceConflict   = errors.New("posting sequence conflict")
	ErrInvalidAccount     = errors.New("invalid account")

	// Posting errors
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidCategory  = errors.New("invalid transaction category")
	ErrInvalidDirection = errors.New("invalid transaction direction")
	ErrInvalidDate      = errors.New("invalid date")

	// Accrual errors
	ErrDuplicateAccrual = errors.New("accrual already settled for month")
	ErrInvalidMonth     = errors.New("invalid accrual month")

	// Product errors
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product code already exists")
	ErrInvalidProduct   = errors.New("invalid product")

	// Storage errors
	ErrPersistence = errors.New("persistence failure")
)

// validationErrors are business-rule rejections that must never be retried.
var validationErrors = []error{
	ErrInvalidAmount,
	ErrInvalidCurrency,
	ErrCurrencyMismatch,
	ErrAccountNotPostable,
	ErrInsufficientFunds,
	ErrInvalidCategory,
	ErrInvalidDirection,
	ErrInvalidStatus,
	ErrInvalidMonth,
	ErrInvalidDate,
	ErrInvalidAccount,
	ErrInvalidProduct,
	ErrInvalidReference,
	ErrInvalidDescription,
	ErrInvalidRate,
}

// IsValidationError reports whether err is a caller or business-rule error.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsDomainError reports whether err carries any of the domain sentinels.
func IsDomainError(err error) bool {
	if IsValidationError(err) {
		return true
	}
	for _, target := range []error{
		ErrAccountNotFound,
		ErrProductNotFound,
		ErrDuplicateProduct,
		ErrDuplicateAccrual,
		ErrSequenceConflict,
		ErrPersistence,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
