package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	// ErrConflict reports a unique name or barcode collision.
	ErrConflict = errors.New("catalog entry already exists")
	// ErrProductInUse refuses deleting a product that line items still reference.
	ErrProductInUse = fmt.Errorf("%w: product is referenced by sale or purchase items", ErrConflict)
)

// ProductFilter narrows product listings. Zero values match everything.
type ProductFilter struct {
	CategoryID *int64
	Search     string
	IDs        []int64
}

// Repository persists products and categories.
type Repository interface {
	SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}
