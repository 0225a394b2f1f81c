package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
)

func ptr[T any](v T) *T { return &v }

func TestCreateProduct_RequiresExistingCategory(t *testing.T) {
	svc := NewService(memory.NewRepository())

	_, err := svc.CreateProduct(context.Background(), ports.ProductInput{
		Name:       ptr("Espresso"),
		CategoryID: ptr(int64(42)),
		Price:      ptr(decimal.NewFromInt(3)),
	})
	require.ErrorIs(t, err, ports.ErrCategoryNotFound)
}

func TestCreateProduct_UniqueNameAndBarcode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())

	_, err := svc.CreateProduct(ctx, ports.ProductInput{Name: ptr("Espresso"), Barcode: ptr("111"), Price: ptr(decimal.NewFromInt(3))})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ports.ProductInput{Name: ptr("espresso"), Price: ptr(decimal.NewFromInt(3))})
	require.ErrorIs(t, err, ports.ErrConflict)

	_, err = svc.CreateProduct(ctx, ports.ProductInput{Name: ptr("Latte"), Barcode: ptr("111"), Price: ptr(decimal.NewFromInt(4))})
	require.ErrorIs(t, err, ports.ErrConflict)
}

func TestUpdateProduct_RejectsNegativeStock(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())
	created, err := svc.CreateProduct(ctx, ports.ProductInput{Name: ptr("Mocha"), Price: ptr(decimal.NewFromInt(5)), Stock: ptr(3)})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, created.ID, ports.ProductInput{Stock: ptr(-1)})
	require.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.UpdateProduct(ctx, created.ID, ports.ProductInput{Stock: ptr(0)})
	require.NoError(t, err)
	require.Equal(t, 0, updated.Stock)
}

func TestLowStock_StrictlyBelowThreshold(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())
	for name, stock := range map[string]int{"a": 2, "b": 10, "c": 9} {
		_, err := svc.CreateProduct(ctx, ports.ProductInput{Name: ptr(name), Price: ptr(decimal.NewFromInt(1)), Stock: ptr(stock)})
		require.NoError(t, err)
	}

	low, err := svc.LowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, 2, low[0].Stock)

	_, err = svc.LowStock(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteCategory_DetachesProducts(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())
	category, err := svc.CreateCategory(ctx, ports.CategoryInput{Name: ptr("Drinks")})
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, ports.ProductInput{Name: ptr("Cola"), CategoryID: &category.ID, Price: ptr(decimal.NewFromInt(2))})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	reloaded, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.CategoryID)
}
