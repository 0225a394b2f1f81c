package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var (
	admin   = actor.Actor{ID: 1, Role: actor.RoleAdmin, Name: "Ada"}
	manager = actor.Actor{ID: 2, Role: actor.RoleManager, Name: "Max"}
	cashier = actor.Actor{ID: 7, Role: actor.RoleCashier, Name: "Cleo"}

	now = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)
)

type fakeSource struct {
	orders   map[ordersdomain.Kind][]*ordersdomain.Order
	products []*catalogdomain.Product
	parties  map[partydomain.Kind][]*partydomain.Party
	calls    int
}

func (f *fakeSource) Orders(_ context.Context, kind ordersdomain.Kind, filter ordersports.ListFilter) ([]*ordersdomain.Order, error) {
	f.calls++
	var out []*ordersdomain.Order
	for _, order := range f.orders[kind] {
		if filter.ActorID != nil && order.ActorID != *filter.ActorID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.From != nil && order.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && order.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

func (f *fakeSource) Products(context.Context) ([]*catalogdomain.Product, error) {
	return f.products, nil
}

func (f *fakeSource) LowStock(_ context.Context, threshold int) ([]*catalogdomain.Product, error) {
	var out []*catalogdomain.Product
	for _, product := range f.products {
		if product.IsLowStock(threshold) {
			out = append(out, product)
		}
	}
	return out, nil
}

func (f *fakeSource) Parties(_ context.Context, kind partydomain.Kind) ([]*partydomain.Party, error) {
	return f.parties[kind], nil
}

type memoryCache struct {
	entries map[string]*domain.Summary
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string) (*domain.Summary, error) {
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	summary, ok := m.entries[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return summary, nil
}

func (m *memoryCache) Set(_ context.Context, key string, summary *domain.Summary, _ time.Duration) error {
	m.entries[key] = summary
	return nil
}

type captureSink struct{ actions []string }

func (c *captureSink) Record(_ context.Context, entry activitydomain.Activity) {
	c.actions = append(c.actions, entry.Action)
}

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr[T any](v T) *T { return &v }

// sale builds a sale whose single line item sells qty units of product.
func sale(id, actorID int64, customer *int64, status ordersdomain.Status, method ordersdomain.PaymentMethod, at time.Time, product int64, qty int, unit string) *ordersdomain.Order {
	price := money(unit)
	total := price.Mul(decimal.NewFromInt(int64(qty)))
	return &ordersdomain.Order{
		ID:             id,
		Kind:           ordersdomain.KindSale,
		ActorID:        actorID,
		CounterpartyID: customer,
		Status:         status,
		PaymentMethod:  method,
		Total:          total,
		CreatedAt:      at,
		Items: []ordersdomain.LineItem{{
			OrderID: id, InventoryRecordID: product, Quantity: qty, UnitPrice: price, Total: total,
		}},
	}
}

func newSource() *fakeSource {
	const coffee, tea = 10, 11
	return &fakeSource{
		orders: map[ordersdomain.Kind][]*ordersdomain.Order{
			ordersdomain.KindSale: {
				sale(1, 7, ptr(int64(100)), ordersdomain.StatusCompleted, ordersdomain.PaymentCash, now.Add(-2*time.Hour), coffee, 3, "20.00"),
				sale(2, 2, ptr(int64(101)), ordersdomain.StatusCompleted, ordersdomain.PaymentCard, now.Add(-3*time.Hour), tea, 5, "5.50"),
				sale(3, 7, nil, ordersdomain.StatusPending, ordersdomain.PaymentCash, now.Add(-30*time.Minute), tea, 1, "5.50"),
				sale(4, 2, ptr(int64(100)), ordersdomain.StatusCompleted, ordersdomain.PaymentCash, now.AddDate(0, -1, 0), coffee, 1, "20.00"),
				sale(5, 2, nil, ordersdomain.StatusCancelled, ordersdomain.PaymentCard, now.AddDate(0, 0, -2), coffee, 2, "20.00"),
			},
			ordersdomain.KindPurchase: {
				{ID: 1, Kind: ordersdomain.KindPurchase, ActorID: 2, Status: ordersdomain.StatusCompleted, Total: money("100.00"), CreatedAt: now.Add(-time.Hour)},
			},
		},
		products: []*catalogdomain.Product{
			{ID: coffee, Name: "Coffee", Stock: 4},
			{ID: tea, Name: "Tea", Stock: 30},
			{ID: 12, Name: "Sugar", Stock: 0},
		},
		parties: map[partydomain.Kind][]*partydomain.Party{
			partydomain.KindCustomer: {{ID: 100, Name: "Alice"}, {ID: 101, Name: "Bob"}},
			partydomain.KindSupplier: {{ID: 200, Name: "Roastery"}},
		},
	}
}

func newService(src ports.Source, opts ...Option) *Service {
	return NewService(src, append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

func TestSummary_AdminSeesEverything(t *testing.T) {
	svc := newService(newSource())

	summary, err := svc.Summary(context.Background(), admin)
	require.NoError(t, err)

	require.Equal(t, "107.5", summary.TotalSales.String())
	require.Equal(t, "100", summary.TotalPurchases.String())
	require.Equal(t, 3, summary.TotalProducts)
	require.Equal(t, 2, summary.LowStockProducts)
	require.Equal(t, 2, summary.TotalCustomers)
	require.Equal(t, 1, summary.TotalSuppliers)
	require.Len(t, summary.RecentSales, 5)
	require.Equal(t, int64(3), summary.RecentSales[0].ID)
	require.Equal(t, "Alice", summary.RecentSales[1].CustomerName)

	require.Equal(t, "87.5", summary.SalesTrend.Current.String())
	require.Equal(t, "20", summary.SalesTrend.Previous.String())
	require.Equal(t, "337.5", summary.SalesTrend.Percentage.String())
	require.NotNil(t, summary.PurchasesTrend)
	require.True(t, summary.PurchasesTrend.Percentage.IsZero())

	require.Len(t, summary.TopProducts, 2)
	require.Equal(t, "Tea", summary.TopProducts[0].Name)
	require.Equal(t, 5, summary.TopProducts[0].QuantitySold)
	require.Equal(t, 4, summary.TopProducts[1].QuantitySold)

	require.True(t, summary.UserContext.CanViewPurchases)
	require.True(t, summary.UserContext.CanViewAllSales)
	require.Zero(t, summary.UserContext.PersonalSalesCount)
}

func TestSummary_CashierIsScopedToOwnSales(t *testing.T) {
	svc := newService(newSource())

	summary, err := svc.Summary(context.Background(), cashier)
	require.NoError(t, err)

	require.Equal(t, "60", summary.TotalSales.String())
	require.True(t, summary.TotalPurchases.IsZero())
	require.Nil(t, summary.PurchasesTrend)
	require.Len(t, summary.RecentSales, 2)
	require.Equal(t, 2, summary.UserContext.PersonalSalesCount)
	require.False(t, summary.UserContext.CanViewPurchases)
	require.False(t, summary.UserContext.CanViewAllSales)
	require.Equal(t, actor.RoleCashier, summary.UserContext.UserRole)
}

func TestSummary_UsesCachePerUser(t *testing.T) {
	src := newSource()
	cache := &memoryCache{entries: map[string]*domain.Summary{}}
	sink := &captureSink{}
	svc := newService(src, WithCache(cache, time.Minute), WithActivitySink(sink))
	ctx := context.Background()

	first, err := svc.Summary(ctx, admin)
	require.NoError(t, err)
	calls := src.calls

	second, err := svc.Summary(ctx, admin)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, calls, src.calls)

	_, err = svc.Summary(ctx, cashier)
	require.NoError(t, err)
	require.Greater(t, src.calls, calls)
	require.Contains(t, cache.entries, "dashboard:summary:7")
	require.Equal(t, []string{"DASHBOARD_SUMMARY_VIEWED", "DASHBOARD_SUMMARY_VIEWED", "DASHBOARD_SUMMARY_VIEWED"}, sink.actions)
}

func TestSummary_CacheFailureFallsBackToSource(t *testing.T) {
	cache := &memoryCache{entries: map[string]*domain.Summary{}, failGet: true}
	svc := newService(newSource(), WithCache(cache, time.Minute))

	summary, err := svc.Summary(context.Background(), admin)
	require.NoError(t, err)
	require.Equal(t, 3, summary.TotalProducts)
}

func TestLowStock(t *testing.T) {
	svc := newService(newSource())

	list, err := svc.LowStock(context.Background(), cashier, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Sugar", list[0].Name)
	require.Equal(t, DefaultLowStockThreshold, list[0].MinimumStock)

	list, err = svc.LowStock(context.Background(), cashier, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.LowStock(context.Background(), cashier, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTopProducts_ScopedForCashier(t *testing.T) {
	svc := newService(newSource())

	top, err := svc.TopProducts(context.Background(), cashier, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "Coffee", top[0].Name)
	require.Equal(t, 3, top[0].QuantitySold)
	require.Equal(t, "60", top[0].Revenue.String())
}

func TestSalesByDay(t *testing.T) {
	svc := newService(newSource())

	days, err := svc.SalesByDay(context.Background(), manager, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, "2026-03-15", days[0].Date)
	require.Equal(t, 2, days[0].TotalOrders)
	require.Equal(t, "87.5", days[0].TotalSales.String())

	_, err = svc.SalesByDay(context.Background(), manager, 400)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestReports_RequireManager(t *testing.T) {
	svc := newService(newSource())
	ctx := context.Background()

	_, err := svc.SalesAnalytics(ctx, cashier, nil, nil)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.DailyReport(ctx, cashier, now)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.SalesTrends(ctx, cashier, 7)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.TopCustomers(ctx, cashier, 5)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSalesAnalytics(t *testing.T) {
	svc := newService(newSource())

	analytics, err := svc.SalesAnalytics(context.Background(), manager, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 5, analytics.TotalSales)
	require.Equal(t, 3, analytics.CompletedSales)
	require.Equal(t, 1, analytics.PendingSales)
	require.Equal(t, "107.5", analytics.TotalRevenue.String())
	require.Equal(t, "60", analytics.CompletionRate.String())

	from := now.Add(-24 * time.Hour)
	to := now.Add(-48 * time.Hour)
	_, err = svc.SalesAnalytics(context.Background(), manager, &from, &to)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDailyReport(t *testing.T) {
	sink := &captureSink{}
	svc := newService(newSource(), WithActivitySink(sink))

	report, err := svc.DailyReport(context.Background(), admin, now)
	require.NoError(t, err)
	require.Equal(t, "2026-03-15", report.Date)
	require.Equal(t, 3, report.TotalSales)
	require.Equal(t, 2, report.CompletedSales)
	require.Equal(t, 1, report.PendingSales)
	require.Equal(t, "87.5", report.TotalRevenue.String())
	require.Equal(t, map[ordersdomain.PaymentMethod]int{ordersdomain.PaymentCash: 2, ordersdomain.PaymentCard: 1}, report.PaymentMethods)

	require.Len(t, report.HourlyBreakdown, 3)
	require.Equal(t, "11:00", report.HourlyBreakdown[0].Hour)
	require.Equal(t, "27.5", report.HourlyBreakdown[0].Revenue.String())
	require.Equal(t, "14:00", report.HourlyBreakdown[2].Hour)
	require.True(t, report.HourlyBreakdown[2].Revenue.IsZero())
	require.Equal(t, []string{"DAILY_SALES_REPORT_GENERATED"}, sink.actions)
}

func TestSalesTrends(t *testing.T) {
	svc := newService(newSource())

	trends, err := svc.SalesTrends(context.Background(), manager, 0)
	require.NoError(t, err)
	require.Equal(t, "30 days", trends.Period)
	require.Equal(t, "2026-02-14", trends.StartDate)
	require.Equal(t, "2026-03-15", trends.EndDate)
	require.Len(t, trends.Trends, 3)
	require.Equal(t, "2026-03-15", trends.Trends[0].Date)
	require.Equal(t, 3, trends.Trends[0].TotalSales)
	require.Equal(t, 2, trends.Trends[0].CompletedSales)
	require.Equal(t, "2026-03-13", trends.Trends[1].Date)
	require.Zero(t, trends.Trends[1].CompletedSales)
	require.Equal(t, "2026-02-15", trends.Trends[2].Date)
}

func TestTopCustomers(t *testing.T) {
	svc := newService(newSource())

	ranking, err := svc.TopCustomers(context.Background(), admin, 0)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	require.Equal(t, "Alice", ranking[0].CustomerName)
	require.Equal(t, 2, ranking[0].TotalOrders)
	require.Equal(t, "80", ranking[0].TotalSpent.String())
	require.Equal(t, "40", ranking[0].AverageOrderValue.String())
	require.Equal(t, "Bob", ranking[1].CustomerName)
	require.Equal(t, "27.5", ranking[1].TotalSpent.String())
}
