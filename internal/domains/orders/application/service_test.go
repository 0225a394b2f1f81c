package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	activityports "github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	catalogmemory "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var (
	admin    = actor.Actor{ID: 1, Role: actor.RoleAdmin, Name: "Ada"}
	manager  = actor.Actor{ID: 2, Role: actor.RoleManager, Name: "Max"}
	cashier7 = actor.Actor{ID: 7, Role: actor.RoleCashier, Name: "Cleo"}
	cashier8 = actor.Actor{ID: 8, Role: actor.RoleCashier, Name: "Cody"}
)

type fakeDirectory struct {
	actors    map[int64]bool
	customers map[int64]bool
	suppliers map[int64]bool
}

func (f fakeDirectory) ActorExists(_ context.Context, id int64) (bool, error) {
	return f.actors[id], nil
}

func (f fakeDirectory) CounterpartyExists(_ context.Context, kind domain.Kind, id int64) (bool, error) {
	if kind == domain.KindPurchase {
		return f.suppliers[id], nil
	}
	return f.customers[id], nil
}

type fixture struct {
	svc     *Service
	catalog *catalogmemory.Repository
	coffee  int64
	tea     int64
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	catalog := catalogmemory.NewRepository()

	coffee, err := catalogdomain.NewProduct("Coffee", "1001", nil, decimal.RequireFromString("20.00"), 10)
	require.NoError(t, err)
	coffee, err = catalog.SaveProduct(ctx, coffee)
	require.NoError(t, err)

	tea, err := catalogdomain.NewProduct("Tea", "1002", nil, decimal.RequireFromString("5.50"), 3)
	require.NoError(t, err)
	tea, err = catalog.SaveProduct(ctx, tea)
	require.NoError(t, err)

	dir := fakeDirectory{
		actors:    map[int64]bool{1: true, 2: true, 7: true, 8: true},
		customers: map[int64]bool{1: true},
		suppliers: map[int64]bool{1: true},
	}
	return &fixture{
		svc:     NewService(memory.NewStore(catalog), dir, opts...),
		catalog: catalog,
		coffee:  coffee.ID,
		tea:     tea.ID,
	}
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	product, err := f.catalog.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func (f *fixture) heldSale(t *testing.T, a actor.Actor, lines ...types.SaleItemInput) *domain.Order {
	t.Helper()
	sale, err := f.svc.CreateSale(context.Background(), a, types.CreateSaleInput{Items: lines, Hold: true})
	require.NoError(t, err)
	return sale
}

func line(recordID int64, qty int) types.SaleItemInput {
	return types.SaleItemInput{InventoryRecordID: recordID, Quantity: qty}
}

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr[T any](v T) *T { return &v }

func requireTotalMatchesItems(t *testing.T, order *domain.Order) {
	t.Helper()
	require.True(t, order.Total.Equal(order.ItemsTotal()), "total %s != items %s", order.Total, order.ItemsTotal())
}

func TestCreateSale_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := activityports.NewMockSink(ctrl)
	var recorded []activitydomain.Activity
	sink.EXPECT().Record(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry activitydomain.Activity) {
		recorded = append(recorded, entry)
	}).AnyTimes()

	f := newFixture(t, WithActivitySink(sink))
	sale, err := f.svc.CreateSale(context.Background(), cashier7, types.CreateSaleInput{
		Items: []types.SaleItemInput{line(f.coffee, 3)},
	})
	require.NoError(t, err)

	require.Equal(t, domain.StatusCompleted, sale.Status)
	require.Equal(t, domain.PaymentCash, sale.PaymentMethod)
	require.Equal(t, int64(7), sale.ActorID)
	require.True(t, sale.Total.Equal(money("60.00")))
	require.Len(t, sale.Items, 1)
	require.NotZero(t, sale.Items[0].ID)
	requireTotalMatchesItems(t, sale)
	require.Equal(t, 7, f.stock(t, f.coffee))

	require.Len(t, recorded, 1)
	require.Equal(t, "SALE_CREATED", recorded[0].Action)
	require.Equal(t, int64(7), recorded[0].UserID)
	require.Equal(t, sale.ID, *recorded[0].EntityID)
}

func TestCreateSale_InsufficientStockPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{
		Items: []types.SaleItemInput{line(f.coffee, 3), line(f.tea, 5)},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	orders, err := f.svc.ListOrders(ctx, admin, domain.KindSale, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Empty(t, orders)
	require.Equal(t, 10, f.stock(t, f.coffee))
	require.Equal(t, 3, f.stock(t, f.tea))
}

func TestCreateSale_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(999, 1)}})
	require.ErrorIs(t, err, ports.ErrInventoryRecordNotFound)

	_, err = f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{CustomerID: ptr(int64(42)), Items: []types.SaleItemInput{line(f.coffee, 1)}})
	require.ErrorIs(t, err, ports.ErrCounterpartyNotFound)

	_, err = f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{ActorID: 8, Items: []types.SaleItemInput{line(f.coffee, 1)}})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateSale(ctx, manager, types.CreateSaleInput{ActorID: 99, Items: []types.SaleItemInput{line(f.coffee, 1)}})
	require.ErrorIs(t, err, ports.ErrActorNotFound)

	_, err = f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 1), line(f.coffee, 2)}})
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, 10, f.stock(t, f.coffee))
}

func TestAddItem_DuplicateLeavesTotalUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 2))

	_, err := f.svc.AddItem(ctx, cashier7, domain.KindSale, types.AddItemInput{OrderID: sale.ID, InventoryRecordID: f.coffee, Quantity: 1})
	require.ErrorIs(t, err, ErrConflict)

	reloaded, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, sale.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Total.Equal(money("40.00")))
	require.Len(t, reloaded.Items, 1)
}

func TestAddItem_LedgerRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 2))

	_, err := f.svc.AddItem(ctx, cashier7, domain.KindSale, types.AddItemInput{OrderID: sale.ID, InventoryRecordID: f.tea, Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AddItem(ctx, cashier7, domain.KindSale, types.AddItemInput{OrderID: sale.ID, InventoryRecordID: f.tea, Quantity: 4})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.svc.AddItem(ctx, cashier8, domain.KindSale, types.AddItemInput{OrderID: sale.ID, InventoryRecordID: f.tea, Quantity: 1})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AddItem(ctx, cashier7, domain.KindSale, types.AddItemInput{OrderID: 999, InventoryRecordID: f.tea, Quantity: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)

	item, err := f.svc.AddItem(ctx, manager, domain.KindSale, types.AddItemInput{OrderID: sale.ID, InventoryRecordID: f.tea, Quantity: 2})
	require.NoError(t, err)
	require.True(t, item.UnitPrice.Equal(money("5.50")))
	require.True(t, item.Total.Equal(money("11.00")))

	reloaded, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, sale.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Total.Equal(money("51.00")))
	requireTotalMatchesItems(t, reloaded)
}

func TestUpdateItem_QuantityAndPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 2))
	itemID := sale.Items[0].ID

	updated, err := f.svc.UpdateItem(ctx, cashier7, domain.KindSale, itemID, types.UpdateItemInput{Quantity: ptr(5)})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Quantity)
	require.True(t, updated.Total.Equal(money("100.00")))

	_, err = f.svc.UpdateItem(ctx, cashier7, domain.KindSale, itemID, types.UpdateItemInput{Quantity: ptr(16)})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.svc.UpdateItem(ctx, cashier7, domain.KindSale, itemID, types.UpdateItemInput{Quantity: ptr(-1)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateItem(ctx, cashier7, domain.KindSale, itemID, types.UpdateItemInput{UnitPrice: ptr(money("1.00"))})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateItem(ctx, cashier7, domain.KindSale, 999, types.UpdateItemInput{Quantity: ptr(1)})
	require.ErrorIs(t, err, ports.ErrItemNotFound)

	reloaded, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, sale.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Total.Equal(money("100.00")))
	requireTotalMatchesItems(t, reloaded)
}

func TestUpdateItem_NoOpWhenUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := activityports.NewMockSink(ctrl)
	sink.EXPECT().Record(gomock.Any(), gomock.Any()).AnyTimes()

	f := newFixture(t, WithActivitySink(sink))
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 2))
	before, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, sale.ID)
	require.NoError(t, err)

	item, err := f.svc.UpdateItem(ctx, cashier7, domain.KindSale, sale.Items[0].ID, types.UpdateItemInput{Quantity: ptr(2)})
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	item, err = f.svc.UpdateItem(ctx, cashier7, domain.KindSale, sale.Items[0].ID, types.UpdateItemInput{})
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	after, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, sale.ID)
	require.NoError(t, err)
	require.True(t, before.Total.Equal(after.Total))
	require.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestDeleteItem_SubtractsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 2), line(f.tea, 1))

	require.NoError(t, f.svc.DeleteItem(ctx, cashier7, domain.KindSale, sale.Items[1].ID))

	reloaded, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, sale.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	require.True(t, reloaded.Total.Equal(money("40.00")))

	require.ErrorIs(t, f.svc.DeleteItem(ctx, cashier7, domain.KindSale, sale.Items[1].ID), ports.ErrItemNotFound)
}

func TestStateGating_CompletedFreezesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 2)}})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, admin, domain.KindSale, types.AddItemInput{OrderID: sale.ID, InventoryRecordID: f.tea, Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.UpdateItem(ctx, admin, domain.KindSale, sale.Items[0].ID, types.UpdateItemInput{Quantity: ptr(1)})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.UpdateItem(ctx, admin, domain.KindSale, sale.Items[0].ID, types.UpdateItemInput{UnitPrice: ptr(money("1.00"))})
	require.ErrorIs(t, err, ErrInvalidState)

	require.ErrorIs(t, f.svc.DeleteItem(ctx, admin, domain.KindSale, sale.Items[0].ID), ErrInvalidState)

	reloaded, err := f.svc.GetOrder(ctx, admin, domain.KindSale, sale.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Total.Equal(money("40.00")))
	require.Equal(t, 8, f.stock(t, f.coffee))
}

func TestUpdateOrder_StockReversalSymmetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 3), line(f.tea, 2))
	require.Equal(t, 10, f.stock(t, f.coffee))

	completed, err := f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCompleted)})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, completed.Status)
	require.Equal(t, 7, f.stock(t, f.coffee))
	require.Equal(t, 1, f.stock(t, f.tea))

	_, err = f.svc.UpdateOrder(ctx, manager, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusPending)})
	require.ErrorIs(t, err, ErrForbidden)

	reverted, err := f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusPending)})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, reverted.Status)
	require.Equal(t, 10, f.stock(t, f.coffee))
	require.Equal(t, 3, f.stock(t, f.tea))
}

func TestUpdateOrder_CompletionRechecksStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.heldSale(t, cashier7, line(f.tea, 2))
	second := f.heldSale(t, cashier7, line(f.tea, 2))

	_, err := f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, first.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCompleted)})
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, second.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCompleted)})
	require.ErrorIs(t, err, ErrInsufficientStock)

	reloaded, err := f.svc.GetOrder(ctx, cashier7, domain.KindSale, second.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, reloaded.Status)
	require.Equal(t, 1, f.stock(t, f.tea))
}

func TestUpdateOrder_TransitionTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 1))

	_, err := f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCompleted)})
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCancelled)})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusPending)})
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCancelled)})
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusPending)})
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, 10, f.stock(t, f.coffee))
}

func TestUpdateOrder_SameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 2)}})
	require.NoError(t, err)

	again, err := f.svc.UpdateOrder(ctx, admin, domain.KindSale, sale.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCompleted)})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, again.Status)
	require.Equal(t, 8, f.stock(t, f.coffee))
	require.Equal(t, sale.UpdatedAt, again.UpdatedAt)
}

func TestUpdateOrder_HeaderFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.heldSale(t, cashier7, line(f.coffee, 1))

	updated, err := f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, sale.ID, types.UpdateOrderInput{
		PaymentMethod:  ptr(domain.PaymentCard),
		CounterpartyID: ptr(int64(1)),
	})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCard, updated.PaymentMethod)
	require.Equal(t, int64(1), *updated.CounterpartyID)

	_, err = f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, sale.ID, types.UpdateOrderInput{ActorID: ptr(int64(8))})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, sale.ID, types.UpdateOrderInput{CounterpartyID: ptr(int64(77))})
	require.ErrorIs(t, err, ports.ErrCounterpartyNotFound)

	reassigned, err := f.svc.UpdateOrder(ctx, manager, domain.KindSale, sale.ID, types.UpdateOrderInput{ActorID: ptr(int64(8))})
	require.NoError(t, err)
	require.Equal(t, int64(8), reassigned.ActorID)

	_, err = f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, 999, types.UpdateOrderInput{PaymentMethod: ptr(domain.PaymentCard)})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRoleScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	own := f.heldSale(t, cashier7, line(f.coffee, 1))
	other := f.heldSale(t, cashier8, line(f.tea, 1))

	mine, err := f.svc.ListOrders(ctx, cashier7, domain.KindSale, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, own.ID, mine[0].ID)

	all, err := f.svc.ListOrders(ctx, manager, domain.KindSale, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = f.svc.GetOrder(ctx, cashier7, domain.KindSale, other.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, other.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCancelled)})
	require.ErrorIs(t, err, ErrForbidden)

	items, err := f.svc.ListItems(ctx, cashier7, domain.KindSale, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, own.ID, items[0].OrderID)

	_, err = f.svc.GetItem(ctx, cashier7, domain.KindSale, other.Items[0].ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestBulkUpdateStatus_CountsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := activityports.NewMockSink(ctrl)
	var bulk []activitydomain.Activity
	sink.EXPECT().Record(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry activitydomain.Activity) {
		if entry.Action == "BULK_SALES_UPDATE" {
			bulk = append(bulk, entry)
		}
	}).AnyTimes()

	f := newFixture(t, WithActivitySink(sink))
	ctx := context.Background()
	first := f.heldSale(t, cashier7, line(f.coffee, 1))
	second := f.heldSale(t, cashier8, line(f.coffee, 2))

	result, err := f.svc.BulkUpdateStatus(ctx, manager, domain.KindSale, types.BulkStatusInput{
		IDs:    []int64{first.ID, second.ID, 999},
		Status: domain.StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, types.BulkResult{Updated: 2, Failed: 1}, result)
	require.Equal(t, 7, f.stock(t, f.coffee))
	require.Len(t, bulk, 1)
	require.Equal(t, 2, bulk[0].Details["updated"])

	_, err = f.svc.BulkUpdateStatus(ctx, cashier7, domain.KindSale, types.BulkStatusInput{IDs: []int64{first.ID}, Status: domain.StatusPending})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.BulkUpdateStatus(ctx, manager, domain.KindSale, types.BulkStatusInput{IDs: []int64{first.ID}, Status: "shipped"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteOrder_CompletedRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 4)}})
	require.NoError(t, err)
	require.Equal(t, 6, f.stock(t, f.coffee))

	require.ErrorIs(t, f.svc.DeleteOrder(ctx, manager, domain.KindSale, sale.ID), ErrForbidden)
	require.ErrorIs(t, f.svc.DeleteOrder(ctx, admin, domain.KindSale, 999), ports.ErrNotFound)

	require.NoError(t, f.svc.DeleteOrder(ctx, admin, domain.KindSale, sale.ID))
	require.Equal(t, 10, f.stock(t, f.coffee))

	_, err = f.svc.GetOrder(ctx, admin, domain.KindSale, sale.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.GetItem(ctx, admin, domain.KindSale, sale.Items[0].ID)
	require.ErrorIs(t, err, ports.ErrItemNotFound)
}

func TestDeleteProduct_RefusedWhileItemsReferenceIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 2)}})
	require.NoError(t, err)
	purchase, err := f.svc.CreatePurchase(ctx, manager, types.CreatePurchaseInput{SupplierID: ptr(int64(1))})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, manager, domain.KindPurchase, types.AddItemInput{
		OrderID: purchase.ID, InventoryRecordID: f.tea, Quantity: 4, UnitPrice: ptr(money("2.00")),
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.catalog.DeleteProduct(ctx, f.coffee), catalogports.ErrConflict)
	require.ErrorIs(t, f.catalog.DeleteProduct(ctx, f.tea), catalogports.ErrProductInUse)

	require.NoError(t, f.svc.DeleteOrder(ctx, admin, domain.KindSale, sale.ID))
	require.Equal(t, 10, f.stock(t, f.coffee))
	require.NoError(t, f.catalog.DeleteProduct(ctx, f.coffee))
	require.ErrorIs(t, f.catalog.DeleteProduct(ctx, f.tea), catalogports.ErrProductInUse)
}

func TestPurchaseLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePurchase(ctx, manager, types.CreatePurchaseInput{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreatePurchase(ctx, manager, types.CreatePurchaseInput{SupplierID: ptr(int64(9))})
	require.ErrorIs(t, err, ports.ErrCounterpartyNotFound)

	purchase, err := f.svc.CreatePurchase(ctx, manager, types.CreatePurchaseInput{SupplierID: ptr(int64(1))})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, purchase.Status)
	require.True(t, purchase.Total.IsZero())
	require.Empty(t, purchase.PaymentMethod)

	_, err = f.svc.AddItem(ctx, manager, domain.KindPurchase, types.AddItemInput{OrderID: purchase.ID, InventoryRecordID: f.coffee, Quantity: 5})
	require.ErrorIs(t, err, ErrInvalidInput)

	item, err := f.svc.AddItem(ctx, manager, domain.KindPurchase, types.AddItemInput{
		OrderID: purchase.ID, InventoryRecordID: f.coffee, Quantity: 50, UnitPrice: ptr(money("12.50")),
	})
	require.NoError(t, err)
	require.True(t, item.Total.Equal(money("625.00")))

	item, err = f.svc.UpdateItem(ctx, manager, domain.KindPurchase, item.ID, types.UpdateItemInput{Quantity: ptr(5), UnitPrice: ptr(money("11.00"))})
	require.NoError(t, err)
	require.True(t, item.Total.Equal(money("55.00")))

	completed, err := f.svc.UpdateOrder(ctx, manager, domain.KindPurchase, purchase.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCompleted)})
	require.NoError(t, err)
	require.True(t, completed.Total.Equal(money("55.00")))
	require.Equal(t, 15, f.stock(t, f.coffee))

	_, err = f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 12)}})
	require.NoError(t, err)
	require.Equal(t, 3, f.stock(t, f.coffee))

	_, err = f.svc.UpdateOrder(ctx, admin, domain.KindPurchase, purchase.ID, types.UpdateOrderInput{Status: ptr(domain.StatusPending)})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, f.stock(t, f.coffee))
}

func TestValidatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	held := f.heldSale(t, cashier7, line(f.coffee, 3))

	short, err := f.svc.ValidatePayment(ctx, cashier7, held.ID, money("50"))
	require.NoError(t, err)
	require.False(t, short.Valid)
	require.Equal(t, "Insufficient payment. Required: 60.00, Received: 50.00", short.Message)

	exact, err := f.svc.ValidatePayment(ctx, cashier7, held.ID, money("60"))
	require.NoError(t, err)
	require.True(t, exact.Valid)
	require.Equal(t, "Payment accepted. No change required.", exact.Message)

	over, err := f.svc.ValidatePayment(ctx, cashier7, held.ID, money("100"))
	require.NoError(t, err)
	require.True(t, over.Valid)
	require.True(t, over.Change.Equal(money("40")))

	done, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.tea, 1)}})
	require.NoError(t, err)
	completed, err := f.svc.ValidatePayment(ctx, cashier7, done.ID, money("10"))
	require.NoError(t, err)
	require.False(t, completed.Valid)
	require.Equal(t, "Sale is already completed", completed.Message)

	_, err = f.svc.ValidatePayment(ctx, cashier8, held.ID, money("100"))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateOrder(ctx, cashier7, domain.KindSale, held.ID, types.UpdateOrderInput{Status: ptr(domain.StatusCancelled)})
	require.NoError(t, err)
	cancelled, err := f.svc.ValidatePayment(ctx, cashier7, held.ID, money("100"))
	require.NoError(t, err)
	require.False(t, cancelled.Valid)
	require.Equal(t, "Sale is cancelled", cancelled.Message)
	require.True(t, cancelled.Change.IsZero())
}

func TestCreateSale_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 3)}, IdempotencyKey: "checkout-1"}

	first, err := f.svc.CreateSale(ctx, cashier7, input)
	require.NoError(t, err)
	replay, err := f.svc.CreateSale(ctx, cashier7, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)
	require.Equal(t, 7, f.stock(t, f.coffee))

	input.Items = []types.SaleItemInput{line(f.coffee, 4)}
	_, err = f.svc.CreateSale(ctx, cashier7, input)
	require.ErrorIs(t, err, ErrConflict)
}

// lockstepKeys holds every key lookup until both checkouts have made one, so
// neither sees the other's claim before it starts its own transaction.
type lockstepKeys struct {
	ports.Store
	arrived sync.WaitGroup
}

func (l *lockstepKeys) GetIdempotencyRecord(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	record, err := l.Store.GetIdempotencyRecord(ctx, key)
	l.arrived.Done()
	l.arrived.Wait()
	return record, err
}

func TestCreateSale_ConcurrentSameKeyCreatesOneSale(t *testing.T) {
	f := newFixture(t)
	store := &lockstepKeys{Store: f.svc.store}
	store.arrived.Add(2)
	svc := NewService(store, f.svc.directory)
	ctx := context.Background()
	input := types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 3)}, IdempotencyKey: "k1"}

	var wg sync.WaitGroup
	sales := make([]*domain.Order, 2)
	errs := make([]error, 2)
	for i := range sales {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sales[i], errs[i] = svc.CreateSale(ctx, cashier7, input)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, sales[0].ID, sales[1].ID)
	require.Equal(t, 7, f.stock(t, f.coffee))
	persisted, err := svc.ListOrders(ctx, manager, domain.KindSale, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Len(t, persisted, 1)
}

func TestCreateSale_ConcurrentKeyReuseWithOtherPayloadConflicts(t *testing.T) {
	f := newFixture(t)
	store := &lockstepKeys{Store: f.svc.store}
	store.arrived.Add(2)
	svc := NewService(store, f.svc.directory)
	ctx := context.Background()
	inputs := []types.CreateSaleInput{
		{Items: []types.SaleItemInput{line(f.coffee, 3)}, IdempotencyKey: "k2"},
		{Items: []types.SaleItemInput{line(f.coffee, 4)}, IdempotencyKey: "k2"},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateSale(ctx, cashier7, inputs[i])
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrConflict)
			failed++
		}
	}
	require.Equal(t, 1, failed)
	stock := f.stock(t, f.coffee)
	require.Contains(t, []int{6, 7}, stock)
	persisted, err := svc.ListOrders(ctx, manager, domain.KindSale, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Len(t, persisted, 1)
}

func TestCustomerHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := ptr(int64(1))
	_, err := f.svc.CreateSale(ctx, cashier7, types.CreateSaleInput{CustomerID: customer, Items: []types.SaleItemInput{line(f.coffee, 1)}})
	require.NoError(t, err)
	_, err = f.svc.CreateSale(ctx, cashier8, types.CreateSaleInput{CustomerID: customer, Items: []types.SaleItemInput{line(f.coffee, 1)}})
	require.NoError(t, err)
	_, err = f.svc.CreateSale(ctx, cashier8, types.CreateSaleInput{Items: []types.SaleItemInput{line(f.coffee, 1)}})
	require.NoError(t, err)

	history, err := f.svc.CustomerHistory(ctx, manager, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)

	scoped, err := f.svc.CustomerHistory(ctx, cashier7, 1)
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	_, err = f.svc.CustomerHistory(ctx, manager, 5)
	require.ErrorIs(t, err, ports.ErrCounterpartyNotFound)
}
