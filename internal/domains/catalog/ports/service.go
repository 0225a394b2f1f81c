package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
)

// ProductInput carries product fields. Nil pointers leave the field untouched on update.
type ProductInput struct {
	Name       *string
	Barcode    *string
	CategoryID *int64
	Price      *decimal.Decimal
	Stock      *int
}

type CategoryInput struct {
	Name        *string
	Description *string
}

// Service exposes catalog management use cases to adapters.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}
