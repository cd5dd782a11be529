package memory

import (
	"context"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	store *Store
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Create stores a product. Codes are unique.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.productCodes[product.Code]; exists {
		return domain.ErrDuplicateProduct
	}
	if _, exists := r.store.products[product.ID]; exists {
		return domain.ErrDuplicateProduct
	}

	row := *product
	r.store.products[row.ID] = &row
	r.store.productCodes[row.Code] = row.ID
	return nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *product
	return &c, nil
}

var _ usecase.ProductRepository = (*ProductRepository)(nil)
