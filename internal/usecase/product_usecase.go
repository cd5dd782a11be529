package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
)

// ProductUseCase stores product terms. Products are keyed records without lifecycle.
type ProductUseCase struct {
	productRepo ProductRepository
	idGen       IDGenerator
	clock       Clock
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(productRepo ProductRepository, idGen IDGenerator, clock Clock) *ProductUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProductUseCase{productRepo: productRepo, idGen: idGen, clock: clock}
}

// CreateProductInput represents input for creating a product. Amounts are decimal strings.
type CreateProductInput struct {
	Code                      string
	Name                      string
	Currency                  string
	AnnualInterestRate        string
	MinimumBalanceForInterest string
	MonthlyMaintenanceFee     string
	TransactionFee            string
	OverdraftLimit            string
}

// CreateProduct validates and stores a product.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidProduct)
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))

	rate := decimal.Zero
	if input.AnnualInterestRate != "" {
		var err error
		if rate, err = decimal.NewFromString(input.AnnualInterestRate); err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRate, input.AnnualInterestRate)
		}
	}
	if err := domain.ValidateRate(rate); err != nil {
		return nil, err
	}

	amounts := make([]decimal.Decimal, 4)
	for i, raw := range []string{
		input.MinimumBalanceForInterest,
		input.MonthlyMaintenanceFee,
		input.TransactionFee,
		input.OverdraftLimit,
	} {
		if raw == "" {
			amounts[i] = decimal.Zero
			continue
		}
		m, err := domain.ParseMoney(raw, currency)
		if err != nil {
			return nil, err
		}
		amounts[i] = m.Amount
	}

	product := &domain.Product{
		ID:                        uc.idGen.Generate(),
		Code:                      code,
		Name:                      strings.TrimSpace(input.Name),
		Currency:                  currency,
		AnnualInterestRate:        rate,
		MinimumBalanceForInterest: amounts[0],
		MonthlyMaintenanceFee:     amounts[1],
		TransactionFee:            amounts[2],
		OverdraftLimit:            amounts[3],
		CreatedAt:                 uc.clock.Now().UTC(),
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, storeError(err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return product, nil
}
