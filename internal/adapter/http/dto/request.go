package dto

import (
	"github.com/iho/coreledger/internal/usecase"
)

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	CustomerID     string `json:"customer_id"     validate:"required,max=64"`
	ProductID      string `json:"product_id"      validate:"required,max=64"`
	OpeningBalance string `json:"opening_balance" validate:"omitempty,numeric"`
	OpeningDate    string `json:"opening_date"    validate:"omitempty,datetime=2006-01-02"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		CustomerID:     r.CustomerID,
		ProductID:      r.ProductID,
		OpeningBalance: r.OpeningBalance,
		OpeningDate:    r.OpeningDate,
	}
}

// ChangeStatusRequest represents an account lifecycle change.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Frozen Dormant Closed"`
}

// PostingRequest represents a manual credit or debit.
type PostingRequest struct {
	Amount      string `json:"amount"      validate:"required,numeric"`
	Currency    string `json:"currency"    validate:"omitempty,len=3,alpha"`
	Category    string `json:"category"    validate:"omitempty,oneof=Deposit Withdrawal Interest Fee Transfer Adjustment"`
	Description string `json:"description" validate:"max=255"`
	Reference   string `json:"reference"   validate:"max=64"`
	Channel     string `json:"channel"     validate:"max=32"`
	ValueDate   string `json:"value_date"  validate:"omitempty,datetime=2006-01-02"`
}

// ToUseCaseInput converts to use case input for accountID.
func (r *PostingRequest) ToUseCaseInput(accountID string) usecase.ManualPostingInput {
	return usecase.ManualPostingInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Category:    r.Category,
		Description: r.Description,
		Reference:   r.Reference,
		Channel:     r.Channel,
		ValueDate:   r.ValueDate,
	}
}

// CreateProductRequest represents a request to create a product.
type CreateProductRequest struct {
	Code                      string `json:"code"                         validate:"required,max=32"`
	Name                      string `json:"name"                         validate:"max=128"`
	Currency                  string `json:"currency"                     validate:"required,len=3,alpha"`
	AnnualInterestRate        string `json:"annual_interest_rate"         validate:"omitempty,numeric"`
	MinimumBalanceForInterest string `json:"minimum_balance_for_interest" validate:"omitempty,numeric"`
	MonthlyMaintenanceFee     string `json:"monthly_maintenance_fee"      validate:"omitempty,numeric"`
	TransactionFee            string `json:"transaction_fee"              validate:"omitempty,numeric"`
	OverdraftLimit            string `json:"overdraft_limit"              validate:"omitempty,numeric"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateProductRequest) ToUseCaseInput() usecase.CreateProductInput {
	return usecase.CreateProductInput{
		Code:                      r.Code,
		Name:                      r.Name,
		Currency:                  r.Currency,
		AnnualInterestRate:        r.AnnualInterestRate,
		MinimumBalanceForInterest: r.MinimumBalanceForInterest,
		MonthlyMaintenanceFee:     r.MonthlyMaintenanceFee,
		TransactionFee:            r.TransactionFee,
		OverdraftLimit:            r.OverdraftLimit,
	}
}

// RunAccrualsRequest triggers a monthly accrual batch. An empty as_of means today.
type RunAccrualsRequest struct {
	AsOf   string `json:"as_of"   validate:"omitempty,datetime=2006-01-02"`
	DryRun bool   `json:"dry_run"`
}

// RunFeesRequest triggers a maintenance fee batch.
type RunFeesRequest struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}
