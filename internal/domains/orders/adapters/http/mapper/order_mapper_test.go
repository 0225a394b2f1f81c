package mapper

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
)

func TestFromDomainOrder_RendersMoneyWithTwoDecimals(t *testing.T) {
	customer := int64(4)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order := &domain.Order{
		ID:             12,
		Kind:           domain.KindSale,
		CounterpartyID: &customer,
		ActorID:        7,
		Total:          decimal.RequireFromString("60"),
		Status:         domain.StatusCompleted,
		PaymentMethod:  domain.PaymentCard,
		CreatedAt:      created,
		Items: []domain.LineItem{
			{ID: 1, OrderID: 12, InventoryRecordID: 3, Quantity: 3, UnitPrice: decimal.RequireFromString("20"), Total: decimal.RequireFromString("60")},
		},
	}

	out := FromDomainOrder(order)
	require.Equal(t, "60.00", out.Total)
	require.Equal(t, "card", out.PaymentMethod)
	require.Equal(t, &customer, out.CounterpartyID)
	require.Len(t, out.Items, 1)
	require.Equal(t, "20.00", out.Items[0].UnitPrice)
	require.Equal(t, int64(3), out.Items[0].InventoryRecordID)
}

func TestToCreateSaleInput(t *testing.T) {
	price := decimal.RequireFromString("2.50")
	input, err := ToCreateSaleInput(CreateSale{
		PaymentMethod: "CARD",
		Items:         []SaleLine{{InventoryRecordID: 1, Quantity: 2, UnitPrice: &price}},
		Hold:          true,
	}, "key-1")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCard, input.PaymentMethod)
	require.Equal(t, "key-1", input.IdempotencyKey)
	require.True(t, input.Hold)
	require.Len(t, input.Items, 1)

	_, err = ToCreateSaleInput(CreateSale{PaymentMethod: "barter"}, "")
	require.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestToUpdateOrderInput(t *testing.T) {
	status := "Completed"
	input, err := ToUpdateOrderInput(UpdateOrder{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, *input.Status)
	require.Nil(t, input.PaymentMethod)

	bad := "shipped"
	_, err = ToUpdateOrderInput(UpdateOrder{Status: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestToBulkStatusInput_NormalisesStatus(t *testing.T) {
	input, err := ToBulkStatusInput(BulkStatus{IDs: []int64{1, 2}, Status: " COMPLETED "})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, input.Status)
	require.Equal(t, []int64{1, 2}, input.IDs)

	_, err = ToBulkStatusInput(BulkStatus{IDs: []int64{1}, Status: "shipped"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
