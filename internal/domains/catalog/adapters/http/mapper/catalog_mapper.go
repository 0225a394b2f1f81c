package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
)

type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Barcode    string    `json:"barcode,omitempty"`
	CategoryID *int64    `json:"categoryId,omitempty"`
	Price      string    `json:"price"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProductPayload keeps field presence so updates only touch what was sent.
type ProductPayload struct {
	Name       *string          `json:"name,omitempty"`
	Barcode    *string          `json:"barcode,omitempty"`
	CategoryID *int64           `json:"categoryId,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Stock      *int             `json:"stock,omitempty"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CategoryPayload struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func ToProductInput(payload ProductPayload) ports.ProductInput {
	return ports.ProductInput{
		Name:       payload.Name,
		Barcode:    payload.Barcode,
		CategoryID: payload.CategoryID,
		Price:      payload.Price,
		Stock:      payload.Stock,
	}
}

func ToCategoryInput(payload CategoryPayload) ports.CategoryInput {
	return ports.CategoryInput{Name: payload.Name, Description: payload.Description}
}

func FromDomainProduct(product *domain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:         product.ID,
		Name:       product.Name,
		Barcode:    product.Barcode,
		CategoryID: product.CategoryID,
		Price:      product.Price.StringFixed(2),
		Stock:      product.Stock,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}

func FromDomainProducts(products []*domain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, FromDomainProduct(product))
	}
	return result
}

func FromDomainCategory(category *domain.Category) Category {
	if category == nil {
		return Category{}
	}
	return Category{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func FromDomainCategories(categories []*domain.Category) []Category {
	result := make([]Category, 0, len(categories))
	for _, category := range categories {
		result = append(result, FromDomainCategory(category))
	}
	return result
}
