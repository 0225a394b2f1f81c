package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newPendingSale(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(KindSale, 1, nil, "")
	require.NoError(t, err)
	order.ID = 5
	return order
}

func mustItem(t *testing.T, recordID int64, qty int, price string) LineItem {
	t.Helper()
	item, err := NewLineItem(recordID, qty, decimal.RequireFromString(price))
	require.NoError(t, err)
	return item
}

func requireTotalConsistent(t *testing.T, o *Order) {
	t.Helper()
	require.True(t, o.Total.Equal(o.ItemsTotal()), "total %s != items %s", o.Total, o.ItemsTotal())
}

func TestNewOrder_Defaults(t *testing.T) {
	sale := newPendingSale(t)
	require.Equal(t, StatusPending, sale.Status)
	require.Equal(t, PaymentCash, sale.PaymentMethod)
	require.True(t, sale.Total.IsZero())

	_, err := NewOrder(KindPurchase, 1, nil, "")
	require.ErrorIs(t, err, ErrCounterpartyRequired)

	supplier := int64(3)
	purchase, err := NewOrder(KindPurchase, 1, &supplier, PaymentCard)
	require.NoError(t, err)
	require.Empty(t, purchase.PaymentMethod)

	_, err = NewOrder(KindSale, 1, nil, "barter")
	require.ErrorIs(t, err, ErrInvalidPayment)
}

func TestLedger_TotalTracksItems(t *testing.T) {
	order := newPendingSale(t)

	first, err := order.AddItem(mustItem(t, 1, 3, "20.00"))
	require.NoError(t, err)
	first.ID = 11
	requireTotalConsistent(t, order)
	require.Equal(t, "60", order.Total.String())

	second, err := order.AddItem(mustItem(t, 2, 1, "0.10"))
	require.NoError(t, err)
	second.ID = 12
	requireTotalConsistent(t, order)

	qty := 5
	_, changed, err := order.ReviseItem(11, &qty, nil)
	require.NoError(t, err)
	require.True(t, changed)
	requireTotalConsistent(t, order)
	require.Equal(t, "100.1", order.Total.String())

	_, err = order.RemoveItem(12)
	require.NoError(t, err)
	requireTotalConsistent(t, order)
	require.Equal(t, "100", order.Total.String())
}

func TestLedger_DuplicateLeavesTotal(t *testing.T) {
	order := newPendingSale(t)
	_, err := order.AddItem(mustItem(t, 2, 1, "4.50"))
	require.NoError(t, err)
	before := order.Total

	_, err = order.AddItem(mustItem(t, 2, 3, "4.50"))
	require.ErrorIs(t, err, ErrDuplicateItem)
	require.True(t, before.Equal(order.Total))
	require.Len(t, order.Items, 1)
}

func TestLedger_RejectsBadQuantityAndPrice(t *testing.T) {
	_, err := NewLineItem(1, 0, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = NewLineItem(1, 1, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidPrice)

	order := newPendingSale(t)
	item, err := order.AddItem(mustItem(t, 1, 1, "1.00"))
	require.NoError(t, err)
	item.ID = 1
	zero := 0
	_, _, err = order.ReviseItem(1, &zero, nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	requireTotalConsistent(t, order)
}

func TestReviseItem_NoOpWhenUnchanged(t *testing.T) {
	order := newPendingSale(t)
	item, err := order.AddItem(mustItem(t, 1, 2, "3.00"))
	require.NoError(t, err)
	item.ID = 9
	before := order.Total

	_, changed, err := order.ReviseItem(9, nil, nil)
	require.NoError(t, err)
	require.False(t, changed)

	same := 2
	_, changed, err = order.ReviseItem(9, &same, nil)
	require.NoError(t, err)
	require.False(t, changed)
	require.True(t, before.Equal(order.Total))
	require.Equal(t, 2, order.Items[0].Quantity)
}

func TestStateGating_CompletedFreezesItems(t *testing.T) {
	order := newPendingSale(t)
	item, err := order.AddItem(mustItem(t, 1, 1, "1.00"))
	require.NoError(t, err)
	item.ID = 1

	changed, err := order.TransitionTo(StatusCompleted)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = order.AddItem(mustItem(t, 2, 1, "1.00"))
	require.ErrorIs(t, err, ErrNotPending)
	qty := 4
	_, _, err = order.ReviseItem(1, &qty, nil)
	require.ErrorIs(t, err, ErrNotPending)
	_, err = order.RemoveItem(1)
	require.ErrorIs(t, err, ErrNotPending)

	_, err = order.TransitionTo(StatusPending)
	require.NoError(t, err)
	_, _, err = order.ReviseItem(1, &qty, nil)
	require.NoError(t, err)
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusCompleted, StatusPending, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, tc := range cases {
		order := &Order{Kind: KindSale, Status: tc.from}
		_, err := order.TransitionTo(tc.to)
		if tc.allowed {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		require.ErrorIs(t, err, ErrTransitionDenied, "%s -> %s", tc.from, tc.to)
		require.Equal(t, tc.from, order.Status)
	}

	order := &Order{Kind: KindSale, Status: StatusCancelled}
	changed, err := order.TransitionTo(StatusCancelled)
	require.NoError(t, err)
	require.False(t, changed)
}
