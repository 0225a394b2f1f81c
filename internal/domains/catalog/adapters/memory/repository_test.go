package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
)

func TestDeleteProduct_RestrictedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	product, err := domain.NewProduct("Scone", "", nil, decimal.NewFromInt(3), 5)
	require.NoError(t, err)
	product, err = repo.SaveProduct(ctx, product)
	require.NoError(t, err)

	referenced := map[int64]bool{product.ID: true}
	repo.RestrictDelete(func(id int64) bool { return referenced[id] })

	require.ErrorIs(t, repo.DeleteProduct(ctx, product.ID), ports.ErrConflict)
	_, err = repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)

	delete(referenced, product.ID)
	require.NoError(t, repo.DeleteProduct(ctx, product.ID))
	require.ErrorIs(t, repo.DeleteProduct(ctx, product.ID), ports.ErrNotFound)
}
