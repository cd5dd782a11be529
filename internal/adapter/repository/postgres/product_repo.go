package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coreledger/internal/usecase"
)

const (
	productsCodeKey = "products_code_key"
	productsPkey    = "products_pkey"
)

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	queries *generated.Queries
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db generated.DBTX) *ProductRepository {
	return &ProductRepository{queries: generated.New(db)}
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.queries.CreateProduct(ctx, generated.CreateProductParams{
		ID:                        product.ID,
		Code:                      product.Code,
		Name:                      product.Name,
		Currency:                  product.Currency,
		AnnualInterestRate:        decimalToNumeric(product.AnnualInterestRate),
		MinimumBalanceForInterest: decimalToNumeric(product.MinimumBalanceForInterest),
		MonthlyMaintenanceFee:     decimalToNumeric(product.MonthlyMaintenanceFee),
		TransactionFee:            decimalToNumeric(product.TransactionFee),
		OverdraftLimit:            decimalToNumeric(product.OverdraftLimit),
		CreatedAt:                 timeToPgTimestamptz(product.CreatedAt),
	})
	if isUniqueViolation(err, productsCodeKey) || isUniqueViolation(err, productsPkey) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, product.Code)
	}

	return err
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row, err := r.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}

		return nil, err
	}

	return &domain.Product{
		ID:                        row.ID,
		Code:                      row.Code,
		Name:                      row.Name,
		Currency:                  row.Currency,
		AnnualInterestRate:        numericToDecimal(row.AnnualInterestRate),
		MinimumBalanceForInterest: numericToDecimal(row.MinimumBalanceForInterest),
		MonthlyMaintenanceFee:     numericToDecimal(row.MonthlyMaintenanceFee),
		TransactionFee:            numericToDecimal(row.TransactionFee),
		OverdraftLimit:            numericToDecimal(row.OverdraftLimit),
		CreatedAt:                 row.CreatedAt.Time,
	}, nil
}

var _ usecase.ProductRepository = (*ProductRepository)(nil)
