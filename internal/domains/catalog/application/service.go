package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
)

// Service orchestrates product and category management.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	if input.Name == nil {
		return nil, mapError(domain.ErrEmptyName)
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	price := decimal.Zero
	if input.Price != nil {
		price = *input.Price
	}
	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	barcode := ""
	if input.Barcode != nil {
		barcode = *input.Barcode
	}
	product, err := domain.NewProduct(*input.Name, barcode, input.CategoryID, price, stock)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.SaveProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input ports.ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		if err := product.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Barcode != nil {
		product.Barcode = strings.TrimSpace(*input.Barcode)
	}
	if input.Price != nil {
		if err := product.Reprice(*input.Price); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Stock != nil {
		if err := product.SetStock(*input.Stock); err != nil {
			return nil, mapError(err)
		}
	}
	return s.repo.SaveProduct(ctx, product)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, ports.ErrNotFound
	}
	return s.repo.GetProductByBarcode(ctx, barcode)
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// LowStock lists products whose stock is strictly below threshold.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold must be greater than zero", ErrInvalidInput)
	}
	return s.repo.ListLowStock(ctx, threshold)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, input ports.CategoryInput) (*domain.Category, error) {
	if input.Name == nil {
		return nil, mapError(domain.ErrEmptyName)
	}
	description := ""
	if input.Description != nil {
		description = *input.Description
	}
	category, err := domain.NewCategory(*input.Name, description)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.SaveCategory(ctx, category)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, input ports.CategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, mapError(domain.ErrEmptyName)
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	return s.repo.SaveCategory(ctx, category)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ensureCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.GetCategory(ctx, *id); err != nil {
		return err
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
